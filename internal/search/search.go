// Package search provides full-text search over distribution requests, with
// Meilisearch as the primary backend and an in-memory scan as fallback.
package search

// Record is the data indexed per distribution request.
type Record struct {
	ID           string `json:"id"`
	ResourceID   string `json:"resourceId"`
	ResourceName string `json:"resourceName"`
	RequestedBy  string `json:"requestedBy"`
	Purpose      string `json:"purpose"`
	Priority     string `json:"priority"`
	Status       string `json:"status"`
}

// Query describes a search request.
type Query struct {
	Text     string
	Priority string // empty = all priorities
	Status   string // empty = all statuses
	Limit    int
	Offset   int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Record `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a request search.
type Searcher interface {
	Search(q Query) ([]Record, int, error)
	Healthy() bool
}
