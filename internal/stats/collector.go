// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Cache client metrics.
	MetricStores     = "stash_stores_total"
	MetricRetrievals = "stash_retrievals_total"
	MetricMisses     = "stash_misses_total"

	// Key-value store metrics, one counter per command.
	MetricKVSets    = "stash_kv_set_total"
	MetricKVGets    = "stash_kv_get_total"
	MetricKVIncrs   = "stash_kv_incr_total"
	MetricKVRPushes = "stash_kv_rpush_total"
	MetricKVLRanges = "stash_kv_lrange_total"
	MetricKVFlushes = "stash_kv_flushdb_total"
	MetricKVMisses  = "stash_kv_misses_total"
	MetricKVErrors  = "stash_kv_errors_total"
	MetricKVLatency = "stash_kv_latency_seconds"

	// Local value cache metrics.
	MetricCacheHits   = "stash_cache_hits_total"
	MetricCacheMisses = "stash_cache_misses_total"
	MetricCacheSize   = "stash_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
