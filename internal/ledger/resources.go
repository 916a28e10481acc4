package ledger

import "time"

// ResourceLedger owns the resource collection. It is not safe for concurrent
// use; the service layer serializes all mutations behind one lock.
type ResourceLedger struct {
	now       func() time.Time
	resources []*Resource
	index     map[string]*Resource
}

// NewResourceLedger seeds the ledger from a collection, preserving order.
// A nil now falls back to time.Now.
func NewResourceLedger(resources []Resource, now func() time.Time) *ResourceLedger {
	if now == nil {
		now = time.Now
	}
	l := &ResourceLedger{
		now:   now,
		index: make(map[string]*Resource, len(resources)),
	}
	for i := range resources {
		r := resources[i]
		l.resources = append(l.resources, &r)
		l.index[r.ID] = &r
	}
	return l
}

// Adjust applies a signed delta to a resource's stock. The result is clamped
// at zero on the low side; there is deliberately no clamp at MaxCapacity, so
// restocking can nominally exceed capacity.
func (l *ResourceLedger) Adjust(id string, delta int) (Resource, error) {
	r, ok := l.index[id]
	if !ok {
		return Resource{}, ErrNotFound
	}
	r.CurrentAmount = max(0, r.CurrentAmount+delta)
	r.LastUpdated = l.now()
	return *r, nil
}

// ApplyFulfillment consumes a fulfillment event, debiting the referenced
// resource by the distributed amount.
func (l *ResourceLedger) ApplyFulfillment(f Fulfillment) (Resource, error) {
	return l.Adjust(f.ResourceID, -f.Amount)
}

func (l *ResourceLedger) Get(id string) (Resource, bool) {
	r, ok := l.index[id]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// Available reports the current stock of a resource. It satisfies the
// StockChecker interface consumed by the request ledger.
func (l *ResourceLedger) Available(id string) (int, bool) {
	r, ok := l.index[id]
	if !ok {
		return 0, false
	}
	return r.CurrentAmount, true
}

// List returns the collection in insertion order.
func (l *ResourceLedger) List() []Resource {
	out := make([]Resource, 0, len(l.resources))
	for _, r := range l.resources {
		out = append(out, *r)
	}
	return out
}

// StatusOf classifies stock against the thresholds. The critical check runs
// first, so a value sitting exactly on both thresholds reads as critical.
func StatusOf(r Resource) Level {
	if r.CurrentAmount <= r.CriticalLevel {
		return LevelCritical
	}
	if r.CurrentAmount <= r.WarningLevel {
		return LevelWarning
	}
	return LevelNormal
}
