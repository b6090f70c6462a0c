// Package redisstashfx provides an fx module for a Redis-backed stash cache.
package redisstashfx

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/stash"
	"github.com/discochess/stash/internal/kv"
	"github.com/discochess/stash/internal/kv/cachedkv"
	"github.com/discochess/stash/internal/kv/cachedkv/cachestrategy/lru"
	"github.com/discochess/stash/internal/kv/cachedkv/memory"
	"github.com/discochess/stash/internal/kv/rediskv"
	"github.com/discochess/stash/internal/kv/statskv"
	"github.com/discochess/stash/internal/stats"
	"github.com/discochess/stash/internal/stats/logger"
	promstats "github.com/discochess/stash/internal/stats/prometheus"
)

// Config holds configuration for the Redis-backed cache.
type Config struct {
	// Addr is the Redis server address. Default is rediskv.DefaultAddr.
	Addr string

	// DB is the Redis logical database.
	DB int

	// Password authenticates to the server, if set.
	Password string

	// CacheSize is the number of values to keep in the local LRU cache.
	// Zero disables local caching.
	CacheSize int

	// KeepExisting skips flushing the database on startup.
	KeepExisting bool

	// Registerer, if set, exports metrics to Prometheus. Otherwise metrics
	// are logged at debug level.
	Registerer prometheus.Registerer
}

// Module provides a Redis-backed *stash.Cache.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("redisstash",
	fx.Provide(
		newStatsCollector,
		newStore,
		newCache,
	),
)

func newStatsCollector(cfg Config, log *zap.Logger) stats.Collector {
	if cfg.Registerer != nil {
		return promstats.New(cfg.Registerer)
	}
	return logger.New(log.Named("stash.stats"))
}

// StoreParams holds dependencies for creating the store.
type StoreParams struct {
	fx.In

	Config    Config
	Collector stats.Collector
}

func newStore(p StoreParams) (kv.Store, error) {
	opts := []rediskv.Option{rediskv.WithDB(p.Config.DB)}
	if p.Config.Password != "" {
		opts = append(opts, rediskv.WithPassword(p.Config.Password))
	}

	ctx := context.Background()
	base, err := rediskv.New(ctx, p.Config.Addr, opts...)
	if err != nil {
		return nil, err
	}

	var st kv.Store = statskv.New(base, p.Collector)
	if p.Config.CacheSize > 0 {
		strategy, err := lru.New(p.Config.CacheSize)
		if err != nil {
			base.Close()
			return nil, err
		}
		st = cachedkv.New(st, memory.New(strategy, p.Collector))
	}
	return st, nil
}

// Params holds dependencies for creating the cache.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Store     kv.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided cache.
type Result struct {
	fx.Out

	Cache *stash.Cache
}

func newCache(p Params) (Result, error) {
	opts := []stash.Option{
		stash.WithStore(p.Store),
		stash.WithStats(p.Collector),
		stash.WithLogger(p.Logger.Named("stash")),
	}
	if p.Config.KeepExisting {
		opts = append(opts, stash.WithKeepExisting())
	}

	cache, err := stash.New(context.Background(), opts...)
	if err != nil {
		p.Store.Close()
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return cache.Close()
		},
	})

	return Result{Cache: cache}, nil
}
