// Package metrics exposes Prometheus counters for catalog traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	catalogRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "booklegend_catalog_requests_total",
		Help: "Total number of catalog API requests",
	}, []string{"endpoint", "outcome"})

	catalogDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booklegend_catalog_request_duration_seconds",
		Help:    "Duration of catalog API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// ObserveCatalogRequest records one finished catalog request.
func ObserveCatalogRequest(endpoint string, ok bool, d time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	catalogRequests.WithLabelValues(endpoint, outcome).Inc()
	catalogDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Handler serves the metrics registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Registry returns the private registry (tests).
func Registry() *prometheus.Registry {
	return registry
}
