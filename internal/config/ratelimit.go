package config

import (
	"time"

	"github.com/lenderlist/lenders-proxy/internal/logger"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type RateLimitConfig struct {
	Enabled         bool
	MaxHits         int
	Window          time.Duration
	Store           string
	CleanupInterval time.Duration
}

// GetRateLimitConfig returns the per-client throttle settings. The defaults
// allow 100 requests per client per hour.
func GetRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:         parseEnvBool("RATELIMIT_ENABLED", true),
		MaxHits:         parseEnvInt("RATELIMIT_MAX_HITS", 100),
		Window:          parseEnvDuration("RATELIMIT_WINDOW", time.Hour),
		Store:           GetEnvOrDefault("RATELIMIT_STORE", StoreMemory),
		CleanupInterval: parseEnvDuration("RATELIMIT_CLEANUP_INTERVAL", 10*time.Minute),
	}

	if cfg.MaxHits <= 0 {
		logger.Warn(logger.CONFIG, "RATELIMIT_MAX_HITS must be positive, using default: 100")
		cfg.MaxHits = 100
	}
	if cfg.Window <= 0 {
		logger.Warn(logger.CONFIG, "RATELIMIT_WINDOW must be positive, using default: 1h")
		cfg.Window = time.Hour
	}

	switch cfg.Store {
	case StoreMemory, StoreRedis:
	default:
		logger.Warn(logger.CONFIG, "Unknown rate limit store %q, using %s", cfg.Store, StoreMemory)
		cfg.Store = StoreMemory
	}

	return cfg
}
