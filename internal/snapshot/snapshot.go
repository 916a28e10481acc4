// Package snapshot persists the ledger collections as versionless JSON
// documents in two independent key-value slots.
package snapshot

import (
	"context"
	"encoding/json"

	"stockpile/api/internal/ledger"
)

const (
	KeyResources = "snapshot:resources"
	KeyRequests  = "snapshot:requests"
)

// Store is the gateway contract: whole-collection save, load-or-absent.
// There are no partial writes and no versioning; last write wins.
type Store interface {
	Save(ctx context.Context, key string, doc []byte) error
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Ping(ctx context.Context) error
	Close() error
}

func EncodeResources(resources []ledger.Resource) ([]byte, error) {
	return json.Marshal(resources)
}

// DecodeResources revives a resource snapshot. A document that fails to
// decode behaves as absent so the caller falls back to seed data.
func DecodeResources(doc []byte) ([]ledger.Resource, bool) {
	var resources []ledger.Resource
	if err := json.Unmarshal(doc, &resources); err != nil {
		return nil, false
	}
	return resources, true
}

func EncodeRequests(requests []ledger.DistributionRequest) ([]byte, error) {
	return json.Marshal(requests)
}

func DecodeRequests(doc []byte) ([]ledger.DistributionRequest, bool) {
	var requests []ledger.DistributionRequest
	if err := json.Unmarshal(doc, &requests); err != nil {
		return nil, false
	}
	return requests, true
}
