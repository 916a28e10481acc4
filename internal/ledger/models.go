// Package ledger holds the resource and distribution-request state and the
// rules for mutating it. The two ledgers are coupled only through the
// StockChecker interface and the Fulfillment event.
package ledger

import "time"

type Category string

const (
	CategoryWater    Category = "water"
	CategoryFood     Category = "food"
	CategoryMedicine Category = "medicine"
	CategoryFuel     Category = "fuel"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryWater, CategoryFood, CategoryMedicine, CategoryFuel:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities for display, most urgent first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

func (p Priority) Valid() bool {
	return p.Rank() < 4
}

type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusDistributed Status = "distributed"
	StatusRejected    Status = "rejected"
)

func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusApproved:
		return 1
	case StatusDistributed:
		return 2
	case StatusRejected:
		return 3
	default:
		return 4
	}
}

func (s Status) Valid() bool {
	return s.Rank() < 4
}

// Terminal statuses admit no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDistributed || s == StatusRejected
}

// Level is the threshold classification of a resource's current stock.
type Level string

const (
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Resource is a tracked critical-supply quantity. The JSON tags define the
// persisted snapshot format; timestamps serialize as RFC 3339.
type Resource struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CurrentAmount int       `json:"currentAmount"`
	MaxCapacity   int       `json:"maxCapacity"`
	Unit          string    `json:"unit"`
	CriticalLevel int       `json:"criticalLevel"`
	WarningLevel  int       `json:"warningLevel"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Category      Category  `json:"category"`
}

// DistributionRequest is a request to draw down a resource. ResourceID is a
// non-owning reference; a dangling reference degrades gracefully on display
// and fails explicitly on fulfillment.
type DistributionRequest struct {
	ID          string    `json:"id"`
	ResourceID  string    `json:"resourceId"`
	RequestedBy string    `json:"requestedBy"`
	Priority    Priority  `json:"priority"`
	Amount      int       `json:"amount"`
	Purpose     string    `json:"purpose"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Fulfillment is the domain event emitted when a request transitions into
// distributed. The resource ledger consumes it to debit stock exactly once.
type Fulfillment struct {
	RequestID  string
	ResourceID string
	Amount     int
}
