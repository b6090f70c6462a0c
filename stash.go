// Package stash provides a key-value cache that stores values under random
// keys and keeps a persistent record of how it was used.
//
// Every call to Store increments a call counter and appends to an
// input/output history, both kept in the same key-value store as the data.
// Replay prints that history back.
//
// Example usage:
//
//	st, err := rediskv.New(ctx, "127.0.0.1:6379")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, err := stash.New(ctx, stash.WithStore(st))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
//	key, err := cache.Store(ctx, "foo")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := cache.GetString(ctx, key) // "foo"
package stash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/stash/internal/instrument"
	"github.com/discochess/stash/internal/kv"
	"github.com/discochess/stash/internal/stats"
)

// StoreOp is the name Store's call counter and history are recorded under.
const StoreOp = "Cache.Store"

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the cache has been closed.
	ErrClosed = errors.New("stash: cache closed")

	// ErrNoStore indicates no store was provided.
	ErrNoStore = errors.New("stash: no store provided")

	// ErrNoConverter indicates Get was called without a converter for a
	// type other than []byte.
	ErrNoConverter = errors.New("stash: no converter")

	// ErrUnsupportedValue indicates Store was given a value that is not
	// text, bytes, an integer or a float.
	ErrUnsupportedValue = kv.ErrUnsupportedValue
)

// Call is one recorded invocation of an instrumented operation.
type Call = instrument.Call

// Cache stores values under random keys.
// A Cache is safe for concurrent use; the consistency of its counters and
// history under concurrent callers is that of the underlying store's INCR
// and RPUSH.
type Cache struct {
	backend kv.Store
	stats   stats.Collector
	logger  *zap.Logger
	newKey  func() string

	// storeFn is put decorated with the call counter and history.
	storeFn instrument.Func[any, string]
	closed  atomic.Bool
}

// New creates a Cache and clears the store it is given, unless
// WithKeepExisting is set.
func New(ctx context.Context, opts ...Option) (*Cache, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.store == nil {
		return nil, ErrNoStore
	}

	c := &Cache{
		backend: cfg.store,
		stats:   cfg.stats,
		logger:  cfg.logger,
		newKey:  cfg.newKey,
	}
	c.storeFn = instrument.CountCalls(c.backend, StoreOp,
		instrument.CallHistory(c.backend, StoreOp, c.put))

	if !cfg.keepExisting {
		if err := c.backend.FlushDB(ctx); err != nil {
			return nil, fmt.Errorf("flushing store: %w", err)
		}
	}

	c.logger.Debug("cache initialized", zap.Bool("flushed", !cfg.keepExisting))
	return c, nil
}

// Store saves data under a freshly generated key and returns the key.
// data must be a string, []byte, an integer or a float.
func (c *Cache) Store(ctx context.Context, data any) (string, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}
	return c.storeFn(ctx, data)
}

// Get returns the raw bytes stored under key.
// A missing key yields nil and no error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	c.stats.IncCounter(stats.MetricRetrievals, 1)
	data, err := c.backend.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		c.stats.IncCounter(stats.MetricMisses, 1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	return data, nil
}

// GetString returns the value under key decoded as text.
// A missing key yields "".
func (c *Cache) GetString(ctx context.Context, key string) (string, error) {
	return Get(ctx, c, key, AsString)
}

// GetInt returns the value under key parsed as a base-10 integer.
// A missing key fails to parse.
func (c *Cache) GetInt(ctx context.Context, key string) (int, error) {
	return Get(ctx, c, key, AsInt)
}

// GetFloat returns the value under key parsed as a float.
func (c *Cache) GetFloat(ctx context.Context, key string) (float64, error) {
	return Get(ctx, c, key, AsFloat)
}

// Calls returns how many times op has been called.
func (c *Cache) Calls(ctx context.Context, op string) (int64, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	return instrument.Calls(ctx, c.backend, op)
}

// History returns the recorded invocations of op in call order.
func (c *Cache) History(ctx context.Context, op string) ([]Call, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return instrument.ReadHistory(ctx, c.backend, op)
}

// Replay writes the call history of op to w, one call per line.
func (c *Cache) Replay(ctx context.Context, w io.Writer, op string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return instrument.Replay(ctx, c.backend, op, w)
}

// Close releases all resources associated with the cache.
// After Close, the cache should not be used.
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if err := c.backend.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

// Backend returns the key-value store used by this cache.
func (c *Cache) Backend() kv.Store {
	return c.backend
}

// put is the undecorated store operation.
func (c *Cache) put(ctx context.Context, data any) (string, error) {
	value, err := kv.Encode(data)
	if err != nil {
		return "", err
	}

	key := c.newKey()
	if err := c.backend.Set(ctx, key, value); err != nil {
		return "", fmt.Errorf("setting %s: %w", key, err)
	}

	c.stats.IncCounter(stats.MetricStores, 1)
	c.logger.Debug("stored value", zap.String("key", key), zap.Int("bytes", len(value)))
	return key, nil
}
