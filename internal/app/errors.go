package app

import (
	"errors"
	"fmt"
	"net/http"

	"stockpile/api/internal/ledger"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func forbiddenError() *DomainError {
	return domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
}

// toDomainError translates ledger failures into the HTTP-facing taxonomy.
func toDomainError(err error) error {
	var verr *ledger.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", verr.Error(), map[string]string{"field": verr.Field})
	case errors.Is(err, ledger.ErrNotFound):
		return domainError(http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	case errors.Is(err, ledger.ErrInsufficientStock):
		return domainError(http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock to fulfill this request", nil)
	case errors.Is(err, ledger.ErrTerminalStatus):
		return domainError(http.StatusConflict, "TERMINAL_STATUS", "Request is already distributed or rejected", nil)
	case errors.Is(err, ledger.ErrInvalidTransition):
		return domainError(http.StatusConflict, "INVALID_TRANSITION", "Request must be approved before distribution", nil)
	default:
		return err
	}
}
