package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/lenderlist/lenders-proxy/internal/config"
	"github.com/lenderlist/lenders-proxy/internal/infrastructure/redis"
	"github.com/lenderlist/lenders-proxy/internal/infrastructure/sheets"
	"github.com/lenderlist/lenders-proxy/internal/logger"
	"github.com/lenderlist/lenders-proxy/internal/metrics"
	"github.com/lenderlist/lenders-proxy/pkg/ratelimit"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	limiter       *ratelimit.Limiter
	metrics       *metrics.ServerMetrics
	redisService  *redis.Service
	sheetsService *sheets.Service
}

// InitializeServices builds every service from the environment. ctx bounds
// background work such as the in-memory store cleanup.
func InitializeServices(ctx context.Context) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log := logger.With(logger.SERVICE)
	log.Info().Msg("Initializing core services")

	serverMetrics := metrics.New()
	sheetsService := sheets.NewService()

	rlCfg := config.GetRateLimitConfig()
	if !rlCfg.Enabled {
		log.Warn().Msg("Rate limiting disabled")
		return &Services{
			metrics:       serverMetrics,
			sheetsService: sheetsService,
		}, nil
	}

	var (
		store        ratelimit.Store
		redisService *redis.Service
	)

	if rlCfg.Store == config.StoreRedis {
		redisService = redis.NewService(ctx)
		if redisService == nil {
			return nil, fmt.Errorf("rate limit store %q requested but Redis is unavailable", config.StoreRedis)
		}
		store = redis.NewStore(redisService.Client(), rlCfg.Window)
		log.Info().Msg("Using Redis rate limit store")
	} else {
		sweepLog := logger.With(logger.RATELIMIT)
		memoryStore := ratelimit.NewMemoryStore()
		memoryStore.StartCleanup(ctx, rlCfg.CleanupInterval, rlCfg.Window, func(removed int) {
			serverMetrics.AddRateLimitSwept(removed)
			if removed > 0 {
				sweepLog.Debug().Int("removed", removed).Msg("Swept idle rate limit keys")
			}
		})
		store = memoryStore
		log.Info().Dur("cleanup_interval", rlCfg.CleanupInterval).Msg("Using in-memory rate limit store")
	}

	limiter := ratelimit.NewLimiter(rlCfg.Window, rlCfg.MaxHits, ratelimit.WithStore(store))

	log.Info().
		Int("max_hits", rlCfg.MaxHits).
		Dur("window", rlCfg.Window).
		Msg("All services initialized successfully")

	return &Services{
		limiter:       limiter,
		metrics:       serverMetrics,
		redisService:  redisService,
		sheetsService: sheetsService,
	}, nil
}

// NewServices assembles a container from ready-made parts. Any of them may
// be nil except sheetsService.
func NewServices(limiter *ratelimit.Limiter, sheetsService *sheets.Service, serverMetrics *metrics.ServerMetrics, redisService *redis.Service) *Services {
	if serverMetrics == nil {
		serverMetrics = metrics.New()
	}
	return &Services{
		limiter:       limiter,
		metrics:       serverMetrics,
		redisService:  redisService,
		sheetsService: sheetsService,
	}
}

// GetLimiter returns the rate limiter, nil when rate limiting is disabled
func (s *Services) GetLimiter() *ratelimit.Limiter {
	return s.limiter
}

// GetMetrics returns the Prometheus metrics
func (s *Services) GetMetrics() *metrics.ServerMetrics {
	return s.metrics
}

// GetRedisService returns the Redis service, nil when not in use
func (s *Services) GetRedisService() *redis.Service {
	return s.redisService
}

// GetSheetsService returns the Google Sheets client
func (s *Services) GetSheetsService() *sheets.Service {
	return s.sheetsService
}

// Close releases external connections
func (s *Services) Close() error {
	if s.redisService != nil {
		return s.redisService.Close()
	}
	return nil
}
