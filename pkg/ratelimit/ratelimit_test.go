package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllow_ExhaustsAtLimit(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(DefaultWindow, DefaultMaxHits, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		ok, err := l.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.True(t, ok, "request %d should be admitted", i+1)
	}

	ok, err := l.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, ok, "101st request within the window should be rejected")
}

func TestAllow_WindowElapses(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(time.Hour, 100, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := l.Allow(ctx, "client")
		require.NoError(t, err)
	}
	ok, _ := l.Allow(ctx, "client")
	require.False(t, ok)

	clock.Advance(time.Hour + time.Second)

	ok, err := l.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, ok, "exhausted client should be admitted once the window has passed")
}

func TestAllow_ExactWindowBoundaryExpires(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(time.Minute, 1, WithClock(clock.Now))
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "client")
	require.True(t, ok)

	clock.Advance(time.Minute - time.Nanosecond)
	ok, _ = l.Allow(ctx, "client")
	assert.False(t, ok, "hit still inside the window")

	clock.Advance(time.Nanosecond)
	ok, _ = l.Allow(ctx, "client")
	assert.True(t, ok, "hit exactly one window old has expired")
}

func TestAllow_IndependentKeys(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(time.Hour, 3, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = l.Allow(ctx, "a")
	}
	ok, _ := l.Allow(ctx, "a")
	require.False(t, ok)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "b")
		require.NoError(t, err)
		assert.True(t, ok, "key b must not be affected by key a")
	}
}

func TestAllow_PrunesOnRejection(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	l := NewLimiter(time.Hour, 2, WithClock(clock.Now), WithStore(store))
	ctx := context.Background()

	start := clock.Now()
	stale := start.Add(-2 * time.Hour)
	fresh := []time.Time{start.Add(-time.Minute), start.Add(-time.Second)}
	require.NoError(t, store.Set(ctx, "client", append([]time.Time{stale}, fresh...)))

	ok, err := l.Allow(ctx, "client")
	require.NoError(t, err)
	require.False(t, ok)

	hits, err := store.Get(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, fresh, hits, "stale hit is dropped and nothing is appended on rejection")
}

func TestAllow_AppendsOnAdmission(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	l := NewLimiter(time.Hour, 5, WithClock(clock.Now), WithStore(store))
	ctx := context.Background()

	_, _ = l.Allow(ctx, "client")
	clock.Advance(time.Second)
	_, _ = l.Allow(ctx, "client")

	hits, err := store.Get(ctx, "client")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.True(t, hits[0].Before(hits[1]), "hits keep insertion order")
}

func TestAllow_ConcurrentBurstAdmitsExactlyLimit(t *testing.T) {
	l := NewLimiter(time.Hour, 100)
	ctx := context.Background()

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Allow(ctx, "burst")
			if err == nil && ok {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), admitted)
}

type failingStore struct {
	err error
}

func (s failingStore) Get(context.Context, string) ([]time.Time, error) { return nil, s.err }
func (s failingStore) Set(context.Context, string, []time.Time) error   { return s.err }

func TestAllow_StoreErrorIsReturned(t *testing.T) {
	boom := errors.New("store unavailable")
	l := NewLimiter(time.Hour, 10, WithStore(failingStore{err: boom}))

	ok, err := l.Allow(context.Background(), "client")
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

type recordingAtomicStore struct {
	*MemoryStore
	calls   int
	allowed bool
}

func (s *recordingAtomicStore) Admit(_ context.Context, _ string, _ time.Time, window time.Duration, maxHits int) (bool, error) {
	s.calls++
	return s.allowed, nil
}

func TestAllow_DelegatesToAtomicStore(t *testing.T) {
	store := &recordingAtomicStore{MemoryStore: NewMemoryStore(), allowed: true}
	l := NewLimiter(time.Hour, 10, WithStore(store))

	ok, err := l.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 0, store.Count(), "atomic stores bypass Get/Set")
}

func TestPrune(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	hits := []time.Time{
		now.Add(-2 * time.Hour),
		now.Add(-time.Hour),
		now.Add(-59 * time.Minute),
		now,
	}

	got := Prune(hits, now, time.Hour)
	assert.Equal(t, []time.Time{now.Add(-59 * time.Minute), now}, got)
	assert.Empty(t, Prune(nil, now, time.Hour))
}
