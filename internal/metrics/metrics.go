package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache metrics
var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thumbnailer_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thumbnailer_cache_misses_total",
			Help: "Total number of thumbnail cache misses (including unreadable entries)",
		},
	)

	CacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thumbnailer_cache_write_failures_total",
			Help: "Total number of failed cache writes",
		},
	)
)

// Pipeline metrics
var (
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thumbnailer_extraction_duration_seconds",
			Help:    "Time spent extracting a frame from a video asset",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thumbnailer_render_duration_seconds",
			Help:    "Time spent resizing and encoding a thumbnail",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbnailer_requests_total",
			Help: "Total number of thumbnail requests by outcome",
		},
		[]string{"outcome"}, // "hit", "generated", "failed"
	)

	FailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbnailer_failures_total",
			Help: "Total number of pipeline failures by stage",
		},
		[]string{"stage"}, // "key", "extract", "render", "save"
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thumbnailer_queue_depth",
			Help: "Number of requests waiting for or occupying a worker",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbnailer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thumbnailer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Initialize pre-populates label combinations so every series is present
// from the first scrape.
func Initialize() {
	for _, outcome := range []string{"hit", "generated", "failed"} {
		RequestsTotal.WithLabelValues(outcome)
	}
	for _, stage := range []string{"key", "extract", "render", "save"} {
		FailuresTotal.WithLabelValues(stage)
	}
}
