package snapshot

import (
	"context"
	"reflect"
	"testing"
	"time"

	"stockpile/api/internal/ledger"
)

func TestResourceSnapshotRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 123456789, time.UTC)
	original := ledger.SeedResources(at)

	doc, err := EncodeResources(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	revived, ok := DecodeResources(doc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if !reflect.DeepEqual(original, revived) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", original, revived)
	}
	if !revived[0].LastUpdated.Equal(at) {
		t.Fatalf("timestamp lost precision: %v", revived[0].LastUpdated)
	}
}

func TestRequestSnapshotRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	original := ledger.SeedRequests(at)

	doc, err := EncodeRequests(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	revived, ok := DecodeRequests(doc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if !reflect.DeepEqual(original, revived) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", original, revived)
	}
}

func TestDecodeFailureBehavesAsAbsent(t *testing.T) {
	if _, ok := DecodeResources([]byte(`{"not":"a list"`)); ok {
		t.Fatalf("truncated document must decode as absent")
	}
	if _, ok := DecodeResources([]byte(`{"not":"a list"}`)); ok {
		t.Fatalf("wrong-shape document must decode as absent")
	}
	if _, ok := DecodeRequests([]byte(`garbage`)); ok {
		t.Fatalf("garbage must decode as absent")
	}
}

func TestTimestampsEncodeAsISO8601(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	doc, err := EncodeResources([]ledger.Resource{{ID: "1", LastUpdated: at, Category: ledger.CategoryWater}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := `"lastUpdated":"2026-03-14T12:00:00Z"`; !contains(doc, want) {
		t.Fatalf("expected %s in %s", want, doc)
	}
}

func contains(doc []byte, want string) bool {
	s := string(doc)
	for i := 0; i+len(want) <= len(s); i++ {
		if s[i:i+len(want)] == want {
			return true
		}
	}
	return false
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, KeyResources); err != nil || ok {
		t.Fatalf("fresh store must report absent, ok=%v err=%v", ok, err)
	}

	if err := store.Save(ctx, KeyResources, []byte(`[1,2,3]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, ok, err := store.Load(ctx, KeyResources)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(doc) != `[1,2,3]` {
		t.Fatalf("unexpected doc %s", doc)
	}

	// Slots are independent.
	if _, ok, _ := store.Load(ctx, KeyRequests); ok {
		t.Fatalf("other slot must stay absent")
	}
}
