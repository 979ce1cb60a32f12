package middleware

import (
	"net/http"

	"github.com/lenderlist/lenders-proxy/pkg/httpext"
)

// CORS sets the CORS headers on every response and answers preflight
// requests itself with 200 and an empty body.
func CORS(opts httpext.CORSOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpext.SetCORSHeaders(w.Header(), opts)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
