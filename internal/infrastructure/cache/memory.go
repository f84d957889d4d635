// Package cache holds the idempotency stores that keep notification handlers
// from acting on the same domain event twice.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopdesk/backend/internal/domain/shared"
)

// sweepEvery bounds how many writes may pass between expiry sweeps.
const sweepEvery = 256

// MemoryIdempotencyStore keeps processed keys in process memory.
// State is not shared between instances; use Redis when running more than one.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	writes  int
	now     func() time.Time
}

// NewMemoryIdempotencyStore creates an empty store
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// MarkProcessed records key until ttl elapses.
// It returns false when key is already recorded and unexpired.
func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)

	s.writes++
	if s.writes%sweepEvery == 0 {
		s.sweep(now)
	}
	return true, nil
}

// IsProcessed reports whether key is recorded and unexpired
func (s *MemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[key]
	return ok && s.now().Before(exp), nil
}

// Len returns the number of recorded keys, expired ones included until the next sweep
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

// Close releases nothing; it exists to satisfy shared.IdempotencyStore
func (s *MemoryIdempotencyStore) Close() error {
	return nil
}

func (s *MemoryIdempotencyStore) sweep(now time.Time) {
	for key, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, key)
		}
	}
}

var _ shared.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
