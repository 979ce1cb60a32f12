// Package ratelimit implements a sliding-window request counter keyed by
// client identifier.
//
// Every check prunes timestamps that have left the window and writes the
// pruned sequence back, whether or not the request is admitted. Only admitted
// requests append a timestamp.
package ratelimit

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

const (
	DefaultMaxHits = 100
	DefaultWindow  = time.Hour

	lockStripes = 64
)

type Limiter struct {
	store   Store
	window  time.Duration
	maxHits int
	now     func() time.Time
	locks   [lockStripes]sync.Mutex
}

type Option func(*Limiter)

// WithStore replaces the default in-memory store.
func WithStore(s Store) Option {
	return func(l *Limiter) {
		l.store = s
	}
}

// WithClock overrides time.Now, used by tests to move through the window.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func NewLimiter(window time.Duration, maxHits int, opts ...Option) *Limiter {
	l := &Limiter{
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	if l.store == nil {
		l.store = NewMemoryStore()
	}
	return l
}

func (l *Limiter) Window() time.Duration { return l.window }
func (l *Limiter) MaxHits() int          { return l.maxHits }
func (l *Limiter) Store() Store          { return l.store }

// Allow reports whether a request for key is admitted.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()

	if atomic, ok := l.store.(AtomicStore); ok {
		allowed, err := atomic.Admit(ctx, key, now, l.window, l.maxHits)
		if err != nil {
			return false, fmt.Errorf("admit %q: %w", key, err)
		}
		return allowed, nil
	}

	mu := l.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	hits, err := l.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load hits for %q: %w", key, err)
	}

	valid := Prune(hits, now, l.window)

	if len(valid) >= l.maxHits {
		if err := l.store.Set(ctx, key, valid); err != nil {
			return false, fmt.Errorf("store hits for %q: %w", key, err)
		}
		return false, nil
	}

	valid = append(valid, now)
	if err := l.store.Set(ctx, key, valid); err != nil {
		return false, fmt.Errorf("store hits for %q: %w", key, err)
	}
	return true, nil
}

// Prune returns the hits that are still inside the window ending at now.
// A hit exactly one window old has expired.
func Prune(hits []time.Time, now time.Time, window time.Duration) []time.Time {
	valid := make([]time.Time, 0, len(hits)+1)
	for _, hit := range hits {
		if now.Sub(hit) < window {
			valid = append(valid, hit)
		}
	}
	return valid
}

func (l *Limiter) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.locks[h.Sum32()%lockStripes]
}
