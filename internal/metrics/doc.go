// Package metrics defines the Prometheus metrics exported by the
// thumbnailer: cache hit/miss counters, extraction and render durations,
// failure counters by stage, and HTTP request metrics. Metrics are
// registered with the default registry via promauto and served by the
// /metrics endpoint.
package metrics
