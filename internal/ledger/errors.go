package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound replaces the original silent no-op on unknown ids so
	// callers and tests can assert on the failure.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a distributed transition would
	// debit more than the referenced resource holds.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrTerminalStatus guards distributed/rejected requests against any
	// further transition, including a repeated distribution.
	ErrTerminalStatus = errors.New("request status is terminal")

	// ErrInvalidTransition is returned for transitions the lifecycle does
	// not allow, such as distributing a request that was never approved.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError rejects bad input before the ledger is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
