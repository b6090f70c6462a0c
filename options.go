package stash

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/discochess/stash/internal/kv"
	"github.com/discochess/stash/internal/stats"
)

// Option configures a Cache.
type Option interface {
	apply(*options)
}

// options holds the cache configuration.
type options struct {
	store        kv.Store
	stats        stats.Collector
	logger       *zap.Logger
	newKey       func() string
	keepExisting bool
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
		newKey: uuid.NewString,
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the key-value backend to use. Required.
func WithStore(s kv.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithKeyFunc sets the function that generates keys for stored values.
// If not set, random UUIDv4 strings are used.
func WithKeyFunc(f func() string) Option {
	return optionFunc(func(o *options) {
		o.newKey = f
	})
}

// WithKeepExisting skips clearing the store in New, so data and call
// history from an earlier Cache remain readable.
func WithKeepExisting() Option {
	return optionFunc(func(o *options) {
		o.keepExisting = true
	})
}
