package search

import "log"

// Service is the facade that tries Meilisearch first and falls back to the
// in-memory scan.
type Service struct {
	meili    *Meili
	fallback *Memory
}

// NewService creates a search service. meili may be nil if Meilisearch is not
// configured.
func NewService(meili *Meili, fallback *Memory) *Service {
	return &Service{meili: meili, fallback: fallback}
}

// Search tries Meilisearch if healthy, otherwise scans in memory.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to memory scan: %v", err)
	}

	results, total, err := s.fallback.Search(q)
	if err != nil {
		log.Printf("search: memory scan error: %v", err)
		return Response{Results: []Record{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexRequest indexes a request (fire-and-forget to Meilisearch).
func (s *Service) IndexRequest(record Record) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexRequest(record); err != nil {
			log.Printf("search: index request %s: %v", record.ID, err)
		}
	}()
}

// IndexRequests bulk-indexes requests (fire-and-forget to Meilisearch).
func (s *Service) IndexRequests(records []Record) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexRequests(records); err != nil {
			log.Printf("search: bulk index %d requests: %v", len(records), err)
		}
	}()
}

func nonNil(records []Record) []Record {
	if records == nil {
		return []Record{}
	}
	return records
}
