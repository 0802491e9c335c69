package devserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serverMetrics is registered on a per-server registry so several servers
// can run in one process.
type serverMetrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	// rejections counts 401 and 403 answers by reason.
	rejections *prometheus.CounterVec
	logins     *prometheus.CounterVec
}

func newServerMetrics() *serverMetrics {
	m := &serverMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafeauth_devserver_requests_total",
				Help: "API requests by route pattern, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cafeauth_devserver_request_duration_seconds",
				Help:    "API request duration by route pattern.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafeauth_devserver_rejections_total",
				Help: "Requests refused by the bearer guard, by reason.",
			},
			[]string{"reason"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafeauth_devserver_logins_total",
				Help: "Authenticate calls by outcome.",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.rejections, m.logins)
	return m
}

func (m *serverMetrics) observe(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *serverMetrics) reject(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *serverMetrics) login(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
