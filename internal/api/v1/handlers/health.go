package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/lenderlist/lenders-proxy/internal/infrastructure/redis"
	"github.com/lenderlist/lenders-proxy/pkg/httpext"
	"github.com/rs/zerolog"
)

type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
}

// HandleHealth reports liveness. When a Redis store is in use it is pinged
// and a failure turns the answer into 503.
func HandleHealth(redisService *redis.Service, w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}

	if redisService != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := redisService.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Health check: Redis ping failed")
			resp.Status = "degraded"
			resp.Redis = "unreachable"
			httpext.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Redis = "ok"
	}

	httpext.WriteJSON(w, http.StatusOK, resp)
}
