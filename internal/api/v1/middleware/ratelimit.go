package middleware

import (
	"net/http"

	"github.com/lenderlist/lenders-proxy/pkg/httpext"
	"github.com/lenderlist/lenders-proxy/pkg/ratelimit"
	"github.com/rs/zerolog"
)

const (
	TooManyRequestsMessage = "Too many requests. Please try again later."
	unknownClient          = "unknown"
)

type RateLimitOption func(*rateLimitHooks)

type rateLimitHooks struct {
	onDenied func(clientID string)
	onError  func(clientID string, err error)
}

// WithOnDenied is called for every rejected request.
func WithOnDenied(fn func(clientID string)) RateLimitOption {
	return func(h *rateLimitHooks) {
		h.onDenied = fn
	}
}

// WithOnError is called when the limiter's store fails. The request is
// admitted in that case.
func WithOnError(fn func(clientID string, err error)) RateLimitOption {
	return func(h *rateLimitHooks) {
		h.onError = fn
	}
}

// ClientID returns the rate-limit key for a request: the X-Forwarded-For
// header, then Client-IP, then "unknown". Values are used verbatim.
func ClientID(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("Client-IP"); ip != "" {
		return ip
	}
	return unknownClient
}

// RateLimit rejects requests over the per-client quota with 429. A nil
// limiter disables the check.
func RateLimit(limiter *ratelimit.Limiter, opts ...RateLimitOption) func(http.Handler) http.Handler {
	hooks := &rateLimitHooks{}
	for _, o := range opts {
		o(hooks)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientID := ClientID(r)
			logger := zerolog.Ctx(r.Context())

			allowed, err := limiter.Allow(r.Context(), clientID)
			if err != nil {
				logger.Error().Err(err).Str("client_id", clientID).Msg("Rate limiter unavailable, admitting request")
				if hooks.onError != nil {
					hooks.onError(clientID, err)
				}
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				logger.Warn().Str("client_id", clientID).Msg("Rate limit exceeded")
				if hooks.onDenied != nil {
					hooks.onDenied(clientID)
				}
				httpext.JsonError(w, TooManyRequestsMessage, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
