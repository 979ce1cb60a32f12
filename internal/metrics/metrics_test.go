package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	m := New()

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/v1/lenders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/lenders", nil))
	}

	got := testutil.ToFloat64(m.reqTotal.WithLabelValues(http.MethodGet, "/v1/lenders", "429"))
	if got != 3 {
		t.Errorf("Expected 3 requests counted, got %v", got)
	}
}

func TestMiddlewareCountsUnmatchedRoutes(t *testing.T) {
	m := New()

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.NotFoundHandler = m.Middleware(http.NotFoundHandler())
	r.HandleFunc("/v1/lenders", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", w.Code)
	}
	got := testutil.ToFloat64(m.reqTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	if got != 1 {
		t.Errorf("Expected 1 unmatched request counted, got %v", got)
	}
}

func TestMiddlewareDefaultsStatusOK(t *testing.T) {
	m := New()

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got := testutil.ToFloat64(m.reqTotal.WithLabelValues(http.MethodGet, "/healthz", "200")); got != 1 {
		t.Errorf("Expected 1 request with status 200, got %v", got)
	}
}

func TestCounters(t *testing.T) {
	m := New()

	m.IncRateLimitDenied()
	m.IncRateLimitDenied()
	m.IncRateLimitError()
	m.AddRateLimitSwept(4)
	m.ObserveUpstream(OutcomeSuccess, 120*time.Millisecond)
	m.ObserveUpstream(OutcomeNetworkError, time.Second)

	if got := testutil.ToFloat64(m.ratelimitDeniedTotal); got != 2 {
		t.Errorf("Expected 2 denied, got %v", got)
	}
	if got := testutil.ToFloat64(m.ratelimitErrorsTotal); got != 1 {
		t.Errorf("Expected 1 limiter error, got %v", got)
	}
	if got := testutil.ToFloat64(m.ratelimitSweptTotal); got != 4 {
		t.Errorf("Expected 4 swept keys, got %v", got)
	}
	if got := testutil.ToFloat64(m.upstreamTotal.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("Expected 1 upstream success, got %v", got)
	}
	if got := testutil.ToFloat64(m.upstreamTotal.WithLabelValues(OutcomeNetworkError)); got != 1 {
		t.Errorf("Expected 1 upstream network error, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.IncRateLimitDenied()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lenders_ratelimit_denied_total") {
		t.Error("Expected lenders_ratelimit_denied_total in exposition")
	}
}
