package cachedkv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/discochess/stash/internal/kv"
	"github.com/discochess/stash/internal/kv/kvtest"
	"github.com/discochess/stash/internal/kv/memkv"
)

// fakeBackend is a simple unbounded backend for testing.
type fakeBackend struct {
	data   map[string][]byte
	hits   int64
	misses int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]byte)}
}

func (b *fakeBackend) Get(key string) ([]byte, bool) {
	if data, ok := b.data[key]; ok {
		b.hits++
		return data, true
	}
	b.misses++
	return nil, false
}

func (b *fakeBackend) Set(key string, data []byte) { b.data[key] = data }
func (b *fakeBackend) Remove(key string)           { delete(b.data, key) }
func (b *fakeBackend) Purge()                      { b.data = make(map[string][]byte) }

func (b *fakeBackend) Stats() Stats {
	return Stats{Hits: b.hits, Misses: b.misses, Size: len(b.data)}
}

// lockedBackend makes fakeBackend safe for concurrent use.
type lockedBackend struct {
	mu sync.Mutex
	b  *fakeBackend
}

func newLockedBackend() *lockedBackend {
	return &lockedBackend{b: newFakeBackend()}
}

func (l *lockedBackend) Get(key string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Get(key)
}

func (l *lockedBackend) Set(key string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.Set(key, data)
}

func (l *lockedBackend) Remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.Remove(key)
}

func (l *lockedBackend) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.Purge()
}

func (l *lockedBackend) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Stats()
}

// failingStore fails every write.
type failingStore struct {
	kv.Store
}

var errWrite = errors.New("write failed")

func (failingStore) Set(ctx context.Context, key string, value []byte) error { return errWrite }

// interleavingStore calls during just before each Incr or FlushDB reaches
// the wrapped store, standing in for a reader on another goroutine.
type interleavingStore struct {
	kv.Store
	during func()
}

func (s *interleavingStore) Incr(ctx context.Context, key string) (int64, error) {
	s.during()
	return s.Store.Incr(ctx, key)
}

func (s *interleavingStore) FlushDB(ctx context.Context) error {
	s.during()
	return s.Store.FlushDB(ctx)
}

func TestConformance(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		return New(memkv.New(), newLockedBackend())
	})
}

func TestStore_CacheHit(t *testing.T) {
	backend := newFakeBackend()
	underlying := memkv.New()
	ctx := context.Background()

	backend.Set("k", []byte("cached data"))

	s := New(underlying, backend)
	data, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "cached data" {
		t.Errorf("Get() = %q, want %q", data, "cached data")
	}
	if s.Stats().Hits != 1 {
		t.Errorf("Stats().Hits = %d, want 1", s.Stats().Hits)
	}
}

func TestStore_CacheMiss(t *testing.T) {
	backend := newFakeBackend()
	underlying := memkv.New()
	ctx := context.Background()

	underlying.Set(ctx, "k", []byte("underlying data"))

	s := New(underlying, backend)
	data, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "underlying data" {
		t.Errorf("Get() = %q, want %q", data, "underlying data")
	}
	if _, ok := backend.data["k"]; !ok {
		t.Error("data should be cached after miss")
	}
	if s.Stats().Misses != 1 {
		t.Errorf("Stats().Misses = %d, want 1", s.Stats().Misses)
	}
}

func TestStore_NotFoundIsNotCached(t *testing.T) {
	backend := newFakeBackend()
	s := New(memkv.New(), backend)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if len(backend.data) != 0 {
		t.Errorf("backend holds %d entries after a miss, want 0", len(backend.data))
	}
}

func TestStore_IncrInvalidates(t *testing.T) {
	backend := newFakeBackend()
	s := New(memkv.New(), backend)
	ctx := context.Background()

	s.Incr(ctx, "counter")
	if _, err := s.Get(ctx, "counter"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	s.Incr(ctx, "counter")

	got, err := s.Get(ctx, "counter")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "2" {
		t.Errorf("Get() after second Incr = %q, want %q", got, "2")
	}
}

func TestStore_IncrRacingGetDoesNotCacheOldCount(t *testing.T) {
	ctx := context.Background()
	underlying := &interleavingStore{Store: memkv.New()}
	s := New(underlying, newFakeBackend())
	underlying.during = func() { s.Get(ctx, "counter") }

	underlying.Store.Set(ctx, "counter", []byte("1"))
	if _, err := s.Incr(ctx, "counter"); err != nil {
		t.Fatalf("Incr() error = %v", err)
	}

	got, err := s.Get(ctx, "counter")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "2" {
		t.Errorf("Get() after Incr = %q, want %q", got, "2")
	}
}

func TestStore_FlushDBRacingGetDoesNotCacheOldValue(t *testing.T) {
	ctx := context.Background()
	underlying := &interleavingStore{Store: memkv.New()}
	s := New(underlying, newFakeBackend())
	underlying.during = func() { s.Get(ctx, "k") }

	underlying.Store.Set(ctx, "k", []byte("v"))
	if err := s.FlushDB(ctx); err != nil {
		t.Fatalf("FlushDB() error = %v", err)
	}

	if _, err := s.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Get() after FlushDB error = %v, want ErrNotFound", err)
	}
}

func TestStore_FailedSetDropsCachedValue(t *testing.T) {
	backend := newFakeBackend()
	backend.Set("k", []byte("stale"))
	s := New(failingStore{memkv.New()}, backend)

	if err := s.Set(context.Background(), "k", []byte("new")); !errors.Is(err, errWrite) {
		t.Fatalf("Set() error = %v, want errWrite", err)
	}
	if _, ok := backend.data["k"]; ok {
		t.Error("stale value should be dropped after a failed write")
	}
}

func TestStore_FlushDBPurges(t *testing.T) {
	backend := newFakeBackend()
	s := New(memkv.New(), backend)
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"))
	if err := s.FlushDB(ctx); err != nil {
		t.Fatalf("FlushDB() error = %v", err)
	}
	if len(backend.data) != 0 {
		t.Errorf("backend holds %d entries after FlushDB, want 0", len(backend.data))
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Get() after FlushDB error = %v, want ErrNotFound", err)
	}
}

func TestStats_HitRate(t *testing.T) {
	tests := []struct {
		name     string
		hits     int64
		misses   int64
		expected float64
	}{
		{"no requests", 0, 0, 0},
		{"all hits", 10, 0, 100},
		{"all misses", 0, 10, 0},
		{"75% hit rate", 3, 1, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stats{Hits: tt.hits, Misses: tt.misses}
			if got := s.HitRate(); got != tt.expected {
				t.Errorf("HitRate() = %v, want %v", got, tt.expected)
			}
		})
	}
}
