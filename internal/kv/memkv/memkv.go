// Package memkv provides an in-memory kv.Store implementation for testing.
package memkv

import (
	"context"
	"strconv"
	"sync"

	"github.com/discochess/stash/internal/kv"
)

// Compile-time check that Store implements kv.Store.
var _ kv.Store = (*Store)(nil)

// Store is an in-memory key-value store.
// Values are copied on the way in and out so callers cannot mutate stored data.
type Store struct {
	mu      sync.RWMutex
	strings map[string][]byte
	lists   map[string][][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		strings: make(map[string][]byte),
		lists:   make(map[string][][]byte),
	}
}

// Set stores a copy of value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, key)
	s.strings[key] = clone(value)
	return nil
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.lists[key]; ok {
		return nil, kv.ErrWrongType
	}
	data, ok := s.strings[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return clone(data), nil
}

// Incr increments the integer stored under key.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[key]; ok {
		return 0, kv.ErrWrongType
	}
	var n int64
	if data, ok := s.strings[key]; ok {
		parsed, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return 0, kv.ErrNotInteger
		}
		n = parsed
	}
	n++
	s.strings[key] = strconv.AppendInt(nil, n, 10)
	return n, nil
}

// RPush appends a copy of value to the list under key.
func (s *Store) RPush(ctx context.Context, key string, value []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.strings[key]; ok {
		return 0, kv.ErrWrongType
	}
	s.lists[key] = append(s.lists[key], clone(value))
	return int64(len(s.lists[key])), nil
}

// LRange returns copies of the list elements between start and stop.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.strings[key]; ok {
		return nil, kv.ErrWrongType
	}
	list := s.lists[key]
	lo, hi := kv.Range(int64(len(list)), start, stop)
	out := make([][]byte, 0, hi-lo)
	for _, item := range list[lo:hi] {
		out = append(out, clone(item))
	}
	return out, nil
}

// FlushDB removes all keys.
func (s *Store) FlushDB(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings = make(map[string][]byte)
	s.lists = make(map[string][][]byte)
	return nil
}

// Len returns the number of keys in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.strings) + len(s.lists)
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
