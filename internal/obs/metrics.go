package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"method", "route", "code"})
	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// MetricsHandler exposes the default prometheus registry.
func MetricsHandler() http.Handler { return promhttp.Handler() }

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route, code string, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpLatency.WithLabelValues(method, route).Observe(seconds)
}
