// Package cachedkv provides a read-through caching wrapper for kv.Store implementations.
package cachedkv

// Backend defines the interface for local value caches.
// Implementations handle storage and eviction strategy (LRU).
type Backend interface {
	// Get retrieves a cached value. Returns nil, false if not found.
	Get(key string) ([]byte, bool)

	// Set stores a value in the cache.
	Set(key string, data []byte)

	// Remove drops key from the cache.
	Remove(key string)

	// Purge drops every entry.
	Purge()

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int // Current number of entries
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
