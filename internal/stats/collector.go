// Package stats defines the metrics surface shared by the engine, the cache
// store and the lookup flow.
package stats

// Metric names.
const (
	MetricLookups         = "foodtrust_lookups_total"
	MetricLookupErrors    = "foodtrust_lookup_errors_total"
	MetricStoreHits       = "foodtrust_store_hits_total"
	MetricUSDAFetches     = "foodtrust_usda_fetches_total"
	MetricClassifications = "foodtrust_classifications_total"
	MetricClassifySeconds = "foodtrust_classify_duration_seconds"
	MetricPhraseMemoHits  = "foodtrust_phrase_memo_hits_total"

	MetricCacheHits      = "foodtrust_cache_hits_total"
	MetricCacheMisses    = "foodtrust_cache_misses_total"
	MetricCacheEvictions = "foodtrust_cache_evictions_total"
	MetricCacheSize      = "foodtrust_cache_size"

	MetricReferenceAliases    = "foodtrust_reference_aliases"
	MetricReferenceCollisions = "foodtrust_reference_collisions"
)

// Collector receives metric updates. Implementations must be safe for
// concurrent use.
type Collector interface {
	IncCounter(name string, delta int64)
	SetGauge(name string, value int64)
	ObserveHistogram(name string, value float64)
}
