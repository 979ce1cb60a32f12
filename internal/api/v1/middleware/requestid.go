package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/lenderlist/lenders-proxy/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags the request with an ID (the caller's, if it sent one) and
// attaches a logger carrying it to the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		l := logger.With(logger.HANDLER).With().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		next.ServeHTTP(w, r.WithContext(l.WithContext(r.Context())))
	})
}
