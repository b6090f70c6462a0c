package cachedkv

import (
	"context"

	"github.com/discochess/stash/internal/kv"
)

// Compile-time check that Store implements kv.Store.
var _ kv.Store = (*Store)(nil)

// Store wraps another Store with a local cache of string values.
// Writes go through to the underlying store first; the cache is only
// touched once the write returned. Lists are never cached.
//
// The cache is local to this process. Writes made by other clients of the
// underlying store can leave stale entries.
type Store struct {
	underlying kv.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying kv.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// Set writes value through to the underlying store and caches it.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.underlying.Set(ctx, key, value); err != nil {
		s.backend.Remove(key)
		return err
	}
	s.backend.Set(key, clone(value))
	return nil
}

// Get reads a value, checking the cache first.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := s.backend.Get(key); ok {
		return clone(data), nil
	}

	// Cache miss - read from underlying store.
	data, err := s.underlying.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	s.backend.Set(key, clone(data))
	return data, nil
}

// Incr increments the counter in the underlying store, then drops any
// cached copy. A Get racing the increment cannot leave the old count cached.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.underlying.Incr(ctx, key)
	s.backend.Remove(key)
	return n, err
}

// RPush appends to a list in the underlying store, then drops any cached
// string under key.
func (s *Store) RPush(ctx context.Context, key string, value []byte) (int64, error) {
	n, err := s.underlying.RPush(ctx, key, value)
	s.backend.Remove(key)
	return n, err
}

// LRange reads a list range from the underlying store.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	return s.underlying.LRange(ctx, key, start, stop)
}

// FlushDB flushes the underlying store, then purges the cache.
func (s *Store) FlushDB(ctx context.Context) error {
	err := s.underlying.FlushDB(ctx)
	s.backend.Purge()
	return err
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
