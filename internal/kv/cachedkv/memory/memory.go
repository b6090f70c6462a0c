// Package memory implements an in-memory cache backend.
package memory

import (
	"sync/atomic"

	"github.com/discochess/stash/internal/kv/cachedkv"
	"github.com/discochess/stash/internal/kv/cachedkv/cachestrategy"
	"github.com/discochess/stash/internal/stats"
)

// Compile-time check that Backend implements cachedkv.Backend.
var _ cachedkv.Backend = (*Backend)(nil)

// Backend is a thread-safe in-memory cache backend.
type Backend struct {
	strategy  cachestrategy.Strategy
	collector stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a new memory backend with the given eviction strategy.
// The collector is optional; if nil, a no-op collector is used.
func New(strategy cachestrategy.Strategy, collector stats.Collector) *Backend {
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Backend{
		strategy:  strategy,
		collector: collector,
	}
}

// Get retrieves a value from the cache.
func (b *Backend) Get(key string) ([]byte, bool) {
	val, ok := b.strategy.Get(key)
	if ok {
		b.hits.Add(1)
		b.collector.IncCounter(stats.MetricCacheHits, 1)
		return val, true
	}
	b.misses.Add(1)
	b.collector.IncCounter(stats.MetricCacheMisses, 1)
	return nil, false
}

// Set stores a value in the cache.
func (b *Backend) Set(key string, data []byte) {
	b.strategy.Add(key, data)
	b.reportSize()
}

// Remove drops key from the cache.
func (b *Backend) Remove(key string) {
	if b.strategy.Remove(key) {
		b.reportSize()
	}
}

// Purge drops every entry.
func (b *Backend) Purge() {
	b.strategy.Purge()
	b.reportSize()
}

// Stats returns current cache statistics.
func (b *Backend) Stats() cachedkv.Stats {
	return cachedkv.Stats{
		Hits:   b.hits.Load(),
		Misses: b.misses.Load(),
		Size:   b.strategy.Len(),
	}
}

func (b *Backend) reportSize() {
	b.collector.SetGauge(stats.MetricCacheSize, int64(b.strategy.Len()))
}
