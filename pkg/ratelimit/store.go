package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store holds the hit timestamps for each key.
type Store interface {
	Get(ctx context.Context, key string) ([]time.Time, error)
	Set(ctx context.Context, key string, hits []time.Time) error
}

// AtomicStore is implemented by stores that can run the whole
// prune-count-append step in one operation, e.g. a shared cache where a
// process-local lock is not enough.
type AtomicStore interface {
	Store
	Admit(ctx context.Context, key string, now time.Time, window time.Duration, maxHits int) (bool, error)
}

// MemoryStore keeps hits in a process-wide map.
type MemoryStore struct {
	mu     sync.RWMutex
	limits map[string][]time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		limits: make(map[string][]time.Time),
	}
}

// Get returns a copy of the hits for key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := s.limits[key]
	out := make([]time.Time, len(hits))
	copy(out, hits)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, hits []time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.limits[key] = hits
	return nil
}

// Count returns the number of tracked keys.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limits)
}

// Cleanup deletes keys whose hits have all left the window ending at now and
// returns how many were removed.
func (s *MemoryStore) Cleanup(now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, hits := range s.limits {
		if len(hits) == 0 || now.Sub(hits[len(hits)-1]) >= window {
			delete(s.limits, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done. onSweep, if set,
// receives the number of keys removed by each pass.
func (s *MemoryStore) StartCleanup(ctx context.Context, interval, window time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed := s.Cleanup(now, window)
				if onSweep != nil {
					onSweep(removed)
				}
			}
		}
	}()
}
