// Package prometheus exposes Prometheus collectors and metric-collecting
// decorators for the domain interfaces.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for article rendering and caching.
type Metrics struct {
	registry *prometheus.Registry

	cacheHitsTotal        prometheus.Counter
	cacheMissesTotal      prometheus.Counter
	cacheWriteErrorsTotal prometheus.Counter

	renderDurationSeconds *prometheus.HistogramVec
	rendersInFlight       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on a fresh
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		cacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pagesnap_cache_hits_total",
			Help: "Total number of article cache hits.",
		}),
		cacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pagesnap_cache_misses_total",
			Help: "Total number of article cache misses.",
		}),
		cacheWriteErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pagesnap_cache_write_errors_total",
			Help: "Total number of failed article cache writes.",
		}),
		renderDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pagesnap_render_duration_seconds",
			Help:    "Histogram of page render latencies, labeled by outcome.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		rendersInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pagesnap_renders_in_flight",
			Help: "Number of renders currently in progress.",
		}),
	}
}

// Handler returns an http.Handler exposing the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
