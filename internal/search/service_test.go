package search

import "testing"

func testRecords() []Record {
	return []Record{
		{ID: "1", ResourceName: "Drinking water", RequestedBy: "Central Hospital", Purpose: "Emergency care", Priority: "critical", Status: "pending"},
		{ID: "2", ResourceName: "Food rations", RequestedBy: "North Evacuation Center", Purpose: "Civilian population", Priority: "high", Status: "pending"},
		{ID: "3", ResourceName: "Essential medicine", RequestedBy: "South Clinic", Purpose: "Urgent treatments", Priority: "critical", Status: "approved"},
	}
}

func newMemoryService() *Service {
	return NewService(nil, NewMemory(testRecords))
}

func TestMemorySearchMatchesRequesterCaseInsensitive(t *testing.T) {
	resp := newMemoryService().Search(Query{Text: "hospital"})
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("expected 1 hit, got %+v", resp)
	}
	if resp.Results[0].ID != "1" {
		t.Fatalf("expected request 1, got %s", resp.Results[0].ID)
	}
}

func TestMemorySearchMatchesPurposeAndResourceName(t *testing.T) {
	if resp := newMemoryService().Search(Query{Text: "civilian"}); resp.Total != 1 || resp.Results[0].ID != "2" {
		t.Fatalf("purpose match failed: %+v", resp)
	}
	if resp := newMemoryService().Search(Query{Text: "medicine"}); resp.Total != 1 || resp.Results[0].ID != "3" {
		t.Fatalf("resource name match failed: %+v", resp)
	}
}

func TestMemorySearchFilters(t *testing.T) {
	resp := newMemoryService().Search(Query{Priority: "critical"})
	if resp.Total != 2 {
		t.Fatalf("expected 2 critical hits, got %d", resp.Total)
	}

	resp = newMemoryService().Search(Query{Priority: "critical", Status: "approved"})
	if resp.Total != 1 || resp.Results[0].ID != "3" {
		t.Fatalf("combined filter failed: %+v", resp)
	}
}

func TestMemorySearchEmptyQueryReturnsAll(t *testing.T) {
	resp := newMemoryService().Search(Query{})
	if resp.Total != 3 {
		t.Fatalf("expected all records, got %d", resp.Total)
	}
}

func TestMemorySearchPagination(t *testing.T) {
	resp := newMemoryService().Search(Query{Limit: 2})
	if resp.Total != 3 || len(resp.Results) != 2 {
		t.Fatalf("limit: total=%d results=%d", resp.Total, len(resp.Results))
	}

	resp = newMemoryService().Search(Query{Limit: 2, Offset: 2})
	if resp.Total != 3 || len(resp.Results) != 1 {
		t.Fatalf("offset: total=%d results=%d", resp.Total, len(resp.Results))
	}

	resp = newMemoryService().Search(Query{Offset: 10})
	if resp.Total != 3 || len(resp.Results) != 0 {
		t.Fatalf("past-end offset: total=%d results=%d", resp.Total, len(resp.Results))
	}
}

func TestMemorySearchNoMatchReturnsEmptySlice(t *testing.T) {
	resp := newMemoryService().Search(Query{Text: "zeppelin"})
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", resp.Results)
	}
}
