package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lenderlist/lenders-proxy/internal/logger"
	"github.com/lenderlist/lenders-proxy/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lenders:ratelimit:"

// admitScript prunes, counts and appends in one step so that instances
// sharing the same Redis cannot overrun the limit.
//
// KEYS[1] = sorted set of hits, scored by unix microseconds
// ARGV    = now, window, limit, member, ttl in ms
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	redis.call('PEXPIRE', key, ARGV[5])
	return 0
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, ARGV[5])
return 1
`)

// Store keeps rate-limit hits in Redis sorted sets, one per client.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ratelimit.AtomicStore = (*Store)(nil)

// NewStore returns a store whose keys expire after ttl of inactivity. ttl is
// normally the limiter window; Admit never expires a key sooner than the
// window it is checking.
func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = ratelimit.DefaultWindow
	}
	return &Store{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return keyPrefix + key
}

func member(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10) + "-" + uuid.NewString()
}

func (s *Store) Get(ctx context.Context, key string) ([]time.Time, error) {
	entries, err := s.client.ZRangeWithScores(ctx, redisKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", key, err)
	}

	hits := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, time.UnixMicro(int64(e.Score)))
	}
	return hits, nil
}

func (s *Store) Set(ctx context.Context, key string, hits []time.Time) error {
	rk := redisKey(key)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, rk)
		if len(hits) == 0 {
			return nil
		}
		members := make([]redis.Z, 0, len(hits))
		for _, h := range hits {
			members = append(members, redis.Z{Score: float64(h.UnixMicro()), Member: member(h)})
		}
		pipe.ZAdd(ctx, rk, members...)
		pipe.PExpire(ctx, rk, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace hits for %s: %w", key, err)
	}
	return nil
}

func (s *Store) Admit(ctx context.Context, key string, now time.Time, window time.Duration, maxHits int) (bool, error) {
	res, err := admitScript.Run(ctx, s.client,
		[]string{redisKey(key)},
		now.UnixMicro(),
		window.Microseconds(),
		maxHits,
		member(now),
		max(s.ttl, window).Milliseconds(),
	).Int()
	if err != nil {
		log := logger.With(logger.REDIS)
		log.Error().Err(err).Str("key", key).Msg("Redis rate limit script failed")
		return false, fmt.Errorf("run admit script: %w", err)
	}
	return res == 1, nil
}

// Clear removes every rate-limit key. Used by tests and operators.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
