// Package session stores the "remember session" markers: hashed refresh
// tokens mapped to user ids, with expiry.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound covers both unknown and expired refresh tokens.
var ErrNotFound = errors.New("refresh token not found or expired")

type Store interface {
	SaveRefresh(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeRefresh(ctx context.Context, tokenHash string) error
	Close() error
}

// MemoryStore is the fallback backend when Redis is not configured, and the
// backend used in tests.
type MemoryStore struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]memoryRecord
}

type memoryRecord struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, tokens: make(map[string]memoryRecord)}
}

func (s *MemoryStore) SaveRefresh(_ context.Context, tokenHash, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = memoryRecord{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) LookupRefresh(_ context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tokens[tokenHash]
	if !ok || s.now().After(record.expiresAt) {
		delete(s.tokens, tokenHash)
		return "", ErrNotFound
	}
	return record.userID, nil
}

func (s *MemoryStore) RevokeRefresh(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenHash)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
