// Package memorystashfx provides an fx module for an in-memory stash cache.
// Useful for testing.
package memorystashfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/stash"
	"github.com/discochess/stash/internal/kv/memkv"
	"github.com/discochess/stash/internal/stats"
	"github.com/discochess/stash/internal/stats/logger"
)

// Module provides an in-memory *stash.Cache for testing, and the
// *memkv.Store behind it for test setup.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorystash",
	fx.Provide(
		newStatsCollector,
		memkv.New,
		newCache,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("stash.stats"))
}

// Params holds dependencies for creating the cache.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memkv.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided cache.
type Result struct {
	fx.Out

	Cache *stash.Cache
}

func newCache(p Params) (Result, error) {
	cache, err := stash.New(context.Background(),
		stash.WithStore(p.Store),
		stash.WithStats(p.Collector),
		stash.WithLogger(p.Logger.Named("stash")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return cache.Close()
		},
	})

	return Result{Cache: cache}, nil
}
