package search

import "strings"

// Memory is the fallback searcher: a case-insensitive substring scan over a
// snapshot of the live request collection supplied by the provider.
type Memory struct {
	provider func() []Record
}

func NewMemory(provider func() []Record) *Memory {
	return &Memory{provider: provider}
}

func (m *Memory) Healthy() bool { return true }

func (m *Memory) Search(q Query) ([]Record, int, error) {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	var matched []Record
	for _, record := range m.provider() {
		if q.Priority != "" && record.Priority != q.Priority {
			continue
		}
		if q.Status != "" && record.Status != q.Status {
			continue
		}
		if text != "" && !recordMatches(record, text) {
			continue
		}
		matched = append(matched, record)
	}

	total := len(matched)
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}
	offset := q.Offset
	if offset >= len(matched) {
		return []Record{}, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func recordMatches(record Record, text string) bool {
	for _, field := range []string{record.RequestedBy, record.Purpose, record.ResourceName} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}
