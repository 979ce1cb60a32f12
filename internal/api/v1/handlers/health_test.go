package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lenderlist/lenders-proxy/internal/infrastructure/redis"
	goredis "github.com/redis/go-redis/v9"
)

func TestHandleHealth(t *testing.T) {
	t.Run("no redis", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleHealth(nil, w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status code 200, got %d", w.Code)
		}
		if got := w.Body.String(); got != `{"status":"ok"}` {
			t.Errorf("Expected ok body, got %s", got)
		}
	})

	t.Run("redis unreachable", func(t *testing.T) {
		client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer client.Close()

		w := httptest.NewRecorder()
		HandleHealth(redis.NewServiceWithClient(client), w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status code 503, got %d", w.Code)
		}
		if got := w.Body.String(); got != `{"status":"degraded","redis":"unreachable"}` {
			t.Errorf("Expected degraded body, got %s", got)
		}
	})
}
