// Package statskv wraps a kv.Store and reports per-command metrics.
package statskv

import (
	"context"
	"errors"
	"time"

	"github.com/discochess/stash/internal/kv"
	"github.com/discochess/stash/internal/stats"
)

// Compile-time check that Store implements kv.Store.
var _ kv.Store = (*Store)(nil)

// Store reports a counter per command, an error counter and a latency
// histogram for every call to the underlying store. A Get for a missing
// key is counted as a cache miss, not an error.
type Store struct {
	underlying kv.Store
	collector  stats.Collector
	now        func() time.Time
}

// New wraps underlying. If collector is nil, a no-op collector is used.
func New(underlying kv.Store, collector stats.Collector) *Store {
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Store{
		underlying: underlying,
		collector:  collector,
		now:        time.Now,
	}
}

// Set writes value to the underlying store.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	defer s.observe(stats.MetricKVSets, s.now())
	return s.fail(s.underlying.Set(ctx, key, value))
}

// Get reads key from the underlying store, counting a missing key as a miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	defer s.observe(stats.MetricKVGets, s.now())
	data, err := s.underlying.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		s.collector.IncCounter(stats.MetricKVMisses, 1)
		return nil, err
	}
	return data, s.fail(err)
}

// Incr increments the counter under key.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	defer s.observe(stats.MetricKVIncrs, s.now())
	n, err := s.underlying.Incr(ctx, key)
	return n, s.fail(err)
}

// RPush appends value to the list under key.
func (s *Store) RPush(ctx context.Context, key string, value []byte) (int64, error) {
	defer s.observe(stats.MetricKVRPushes, s.now())
	n, err := s.underlying.RPush(ctx, key, value)
	return n, s.fail(err)
}

// LRange reads a range of the list under key.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	defer s.observe(stats.MetricKVLRanges, s.now())
	items, err := s.underlying.LRange(ctx, key, start, stop)
	return items, s.fail(err)
}

// FlushDB removes every key from the underlying store.
func (s *Store) FlushDB(ctx context.Context) error {
	defer s.observe(stats.MetricKVFlushes, s.now())
	return s.fail(s.underlying.FlushDB(ctx))
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

func (s *Store) observe(metric string, start time.Time) {
	s.collector.IncCounter(metric, 1)
	s.collector.ObserveHistogram(stats.MetricKVLatency, s.now().Sub(start).Seconds())
}

func (s *Store) fail(err error) error {
	if err != nil {
		s.collector.IncCounter(stats.MetricKVErrors, 1)
	}
	return err
}
