package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/stash"
	"github.com/discochess/stash/fx/redisstashfx"
	"github.com/discochess/stash/internal/codec"
	"github.com/discochess/stash/internal/codec/gzipcodec"
	"github.com/discochess/stash/internal/codec/noopcodec"
	"github.com/discochess/stash/internal/codec/zstdcodec"
	"github.com/discochess/stash/internal/docstore/mongodoc"
	"github.com/discochess/stash/internal/kv/badgerkv"
	"github.com/discochess/stash/internal/kv/rediskv"
	"github.com/discochess/stash/internal/kv/statskv"
	"github.com/discochess/stash/internal/stats/logger"
)

const (
	backendRedis  = "redis"
	backendBadger = "badger"
)

var (
	// Global flags.
	backend   string
	redisAddr string
	redisDB   int
	dataDir   string
	mongoURI  string
	cacheSize int
	codecName string
	verbose   bool

	// redisDBEnvErr holds a malformed STASH_REDIS_DB until a command runs.
	redisDBEnvErr error
)

var rootCmd = &cobra.Command{
	Use:   "stash",
	Short: "Instrumented key-value cache and document store exercises",
	Long: `Stash stores values under random keys in Redis (or an embedded Badger
database), counting every store call and recording its inputs and outputs.
It also lists and summarizes MongoDB collections.

Examples:
  # Store a few values and replay the call history
  stash demo

  # Store a value, then read it back as an integer
  stash store --type int 42
  stash get --as int <key>

  # Summarize nginx request logs
  stash logstats --mongo-uri mongodb://localhost:27017`,
	SilenceUsage:      true,
	PersistentPreRunE: validateFlags,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", backendRedis, "key-value backend (redis or badger)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", envString("STASH_REDIS_ADDR", rediskv.DefaultAddr), "Redis server address")
	defaultDB, err := envInt("STASH_REDIS_DB", 0)
	redisDBEnvErr = err
	rootCmd.PersistentFlags().IntVar(&redisDB, "redis-db", defaultDB, "Redis logical database")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./data", "directory for the badger backend")
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", envString("STASH_MONGO_URI", mongodoc.DefaultURI), "MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "none", "value compression for the badger backend (none, zstd or gzip)")
	rootCmd.PersistentFlags().IntVar(&cacheSize, "cache-size", 128, "local LRU cache size (0 disables)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func envString(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return n, nil
}

// validateFlags rejects settings that would point a command at the wrong
// database. demo flushes what it opens.
func validateFlags(cmd *cobra.Command, args []string) error {
	if redisDBEnvErr != nil && !cmd.Flags().Changed("redis-db") {
		return redisDBEnvErr
	}
	if redisDB < 0 {
		return fmt.Errorf("invalid --redis-db %d: must not be negative", redisDB)
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// openCache builds a cache on the configured backend. The returned function
// releases it.
func openCache(ctx context.Context, keepExisting bool) (*stash.Cache, func(), error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	switch backend {
	case backendRedis:
		return openRedisCache(ctx, log, keepExisting)
	case backendBadger:
		return openBadgerCache(ctx, log, keepExisting)
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func openRedisCache(ctx context.Context, log *zap.Logger, keepExisting bool) (*stash.Cache, func(), error) {
	var cache *stash.Cache
	app := fx.New(
		fx.Supply(redisstashfx.Config{
			Addr:         redisAddr,
			DB:           redisDB,
			CacheSize:    cacheSize,
			KeepExisting: keepExisting,
		}),
		fx.Supply(log),
		redisstashfx.Module,
		fx.Populate(&cache),
		fx.NopLogger,
	)
	if err := app.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", redisAddr, err)
	}

	stop := func() {
		if err := app.Stop(context.Background()); err != nil {
			log.Warn("stopping cache", zap.Error(err))
		}
		log.Sync()
	}
	return cache, stop, nil
}

func newCodec(name string) (codec.Codec, error) {
	switch name {
	case "none":
		return noopcodec.New(), nil
	case "zstd":
		return zstdcodec.New()
	case "gzip":
		return gzipcodec.New(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

func openBadgerCache(ctx context.Context, log *zap.Logger, keepExisting bool) (*stash.Cache, func(), error) {
	cd, err := newCodec(codecName)
	if err != nil {
		return nil, nil, err
	}

	st, err := badgerkv.New(dataDir,
		badgerkv.WithLogger(log.Named("badger")),
		badgerkv.WithCodec(cd),
	)
	if err != nil {
		return nil, nil, err
	}

	collector := logger.New(log.Named("stash.stats"))
	opts := []stash.Option{
		stash.WithStore(statskv.New(st, collector)),
		stash.WithStats(collector),
		stash.WithLogger(log.Named("stash")),
	}
	if keepExisting {
		opts = append(opts, stash.WithKeepExisting())
	}

	cache, err := stash.New(ctx, opts...)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	stop := func() {
		if err := cache.Close(); err != nil {
			log.Warn("closing cache", zap.Error(err))
		}
		log.Sync()
	}
	return cache, stop, nil
}
