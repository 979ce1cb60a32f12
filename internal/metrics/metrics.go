package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess       = "success"
	OutcomeUpstreamError = "upstream_error"
	OutcomeNetworkError  = "network_error"
)

type ServerMetrics struct {
	reg                  *prometheus.Registry
	handler              http.Handler
	inflight             prometheus.Gauge
	reqTotal             *prometheus.CounterVec
	reqDur               *prometheus.HistogramVec
	ratelimitDeniedTotal prometheus.Counter
	ratelimitErrorsTotal prometheus.Counter
	ratelimitSweptTotal  prometheus.Counter
	upstreamTotal        *prometheus.CounterVec
	upstreamDur          prometheus.Histogram
}

// New returns a fresh registry + standard collectors + service metrics.
// Labels are bounded (method, route template, status, outcome).
func New() *ServerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ServerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lenders_http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lenders_http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lenders_http_request_duration_seconds",
			Help:    "Request latency by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		ratelimitDeniedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lenders_ratelimit_denied_total",
			Help: "Total requests rejected by the rate limiter",
		}),
		ratelimitErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lenders_ratelimit_errors_total",
			Help: "Total rate limiter store failures (request admitted)",
		}),
		ratelimitSweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lenders_ratelimit_swept_keys_total",
			Help: "Total idle client keys removed from the in-memory store",
		}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lenders_upstream_requests_total",
			Help: "Total Sheets API requests by outcome",
		}, []string{"outcome"}),
		upstreamDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lenders_upstream_duration_seconds",
			Help:    "Sheets API request latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
	reg.MustRegister(
		m.inflight,
		m.reqTotal,
		m.reqDur,
		m.ratelimitDeniedTotal,
		m.ratelimitErrorsTotal,
		m.ratelimitSweptTotal,
		m.upstreamTotal,
		m.upstreamDur,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	m.reg = reg
	return m
}

func (m *ServerMetrics) Handler() http.Handler {
	return m.handler
}

func (m *ServerMetrics) Registry() *prometheus.Registry {
	return m.reg
}

func (m *ServerMetrics) IncRateLimitDenied() {
	m.ratelimitDeniedTotal.Inc()
}

func (m *ServerMetrics) IncRateLimitError() {
	m.ratelimitErrorsTotal.Inc()
}

func (m *ServerMetrics) AddRateLimitSwept(n int) {
	m.ratelimitSweptTotal.Add(float64(n))
}

func (m *ServerMetrics) ObserveUpstream(outcome string, d time.Duration) {
	m.upstreamTotal.WithLabelValues(outcome).Inc()
	m.upstreamDur.Observe(d.Seconds())
}
