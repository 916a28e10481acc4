package ledger

import (
	"sort"
	"strings"
	"time"

	"stockpile/api/internal/util"
)

// StockChecker reports available stock for a resource id. The request ledger
// consults it at the moment of a distributed transition so it never reaches
// into resource state directly.
type StockChecker interface {
	Available(resourceID string) (int, bool)
}

// RequestLedger owns the distribution-request collection. Like the resource
// ledger it relies on the caller for serialization.
type RequestLedger struct {
	now      func() time.Time
	newID    func() string
	stock    StockChecker
	requests []*DistributionRequest
	index    map[string]*DistributionRequest
}

func NewRequestLedger(requests []DistributionRequest, stock StockChecker, now func() time.Time) *RequestLedger {
	if now == nil {
		now = time.Now
	}
	l := &RequestLedger{
		now:   now,
		newID: func() string { return util.NewID("req") },
		stock: stock,
		index: make(map[string]*DistributionRequest, len(requests)),
	}
	for i := range requests {
		r := requests[i]
		l.requests = append(l.requests, &r)
		l.index[r.ID] = &r
	}
	return l
}

// Create validates input and inserts a new pending request at the head of the
// collection, so the store itself is most-recent-first.
func (l *RequestLedger) Create(resourceID, requestedBy string, priority Priority, amount int, purpose string) (DistributionRequest, error) {
	resourceID = strings.TrimSpace(resourceID)
	requestedBy = strings.TrimSpace(requestedBy)

	if resourceID == "" {
		return DistributionRequest{}, validationError("resourceId", "must not be empty")
	}
	if requestedBy == "" {
		return DistributionRequest{}, validationError("requestedBy", "must not be empty")
	}
	if amount <= 0 {
		return DistributionRequest{}, validationError("amount", "must be positive")
	}
	if !priority.Valid() {
		return DistributionRequest{}, validationError("priority", "must be one of critical, high, medium, low")
	}

	req := &DistributionRequest{
		ID:          l.newID(),
		ResourceID:  resourceID,
		RequestedBy: requestedBy,
		Priority:    priority,
		Amount:      amount,
		Purpose:     strings.TrimSpace(purpose),
		Status:      StatusPending,
		CreatedAt:   l.now(),
	}
	l.requests = append([]*DistributionRequest{req}, l.requests...)
	l.index[req.ID] = req
	return *req, nil
}

// SetStatus drives the request lifecycle. Terminal requests reject any
// further transition, and distributed is only reachable from approved with
// sufficient stock at the moment of transition. A transition into distributed
// returns the Fulfillment event the resource ledger must consume; no other
// transition has a stock side effect.
func (l *RequestLedger) SetStatus(id string, status Status) (DistributionRequest, *Fulfillment, error) {
	req, ok := l.index[id]
	if !ok {
		return DistributionRequest{}, nil, ErrNotFound
	}
	if !status.Valid() {
		return DistributionRequest{}, nil, validationError("status", "must be one of pending, approved, distributed, rejected")
	}
	if req.Status.Terminal() {
		return DistributionRequest{}, nil, ErrTerminalStatus
	}
	if status == req.Status {
		return *req, nil, nil
	}

	if status == StatusDistributed {
		if req.Status != StatusApproved {
			return DistributionRequest{}, nil, ErrInvalidTransition
		}
		available, ok := l.stock.Available(req.ResourceID)
		if !ok {
			return DistributionRequest{}, nil, ErrNotFound
		}
		if available < req.Amount {
			return DistributionRequest{}, nil, ErrInsufficientStock
		}
		req.Status = StatusDistributed
		return *req, &Fulfillment{RequestID: req.ID, ResourceID: req.ResourceID, Amount: req.Amount}, nil
	}

	req.Status = status
	return *req, nil, nil
}

// CanFulfill is the advisory query the UI uses to gate the distribute action.
// SetStatus re-checks it; this exists so the interface layer can disable the
// action before anyone tries.
func (l *RequestLedger) CanFulfill(req DistributionRequest) bool {
	available, ok := l.stock.Available(req.ResourceID)
	return ok && available >= req.Amount
}

func (l *RequestLedger) Get(id string) (DistributionRequest, bool) {
	req, ok := l.index[id]
	if !ok {
		return DistributionRequest{}, false
	}
	return *req, true
}

// List returns the collection in storage order, most recent first.
func (l *RequestLedger) List() []DistributionRequest {
	out := make([]DistributionRequest, 0, len(l.requests))
	for _, req := range l.requests {
		out = append(out, *req)
	}
	return out
}

// SortForDisplay orders a copy of the given requests by priority rank, then
// status rank. This is a view-level ordering, not a ledger invariant.
func SortForDisplay(requests []DistributionRequest) []DistributionRequest {
	out := make([]DistributionRequest, len(requests))
	copy(out, requests)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority.Rank() != out[j].Priority.Rank() {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		}
		return out[i].Status.Rank() < out[j].Status.Rank()
	})
	return out
}
