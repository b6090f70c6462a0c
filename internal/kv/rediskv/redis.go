// Package rediskv implements a Redis key-value backend.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/discochess/stash/internal/kv"
)

// DefaultAddr is the address of a local Redis server.
const DefaultAddr = "127.0.0.1:6379"

// Compile-time check that Store implements kv.Store.
var _ kv.Store = (*Store)(nil)

// Store is a Redis storage backend.
type Store struct {
	client *redis.Client
}

// Option configures the underlying Redis client.
type Option func(*redis.Options)

// WithDB selects the Redis logical database.
func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

// WithPassword sets the password used to authenticate.
func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

// WithUsername sets the ACL username used to authenticate.
func WithUsername(username string) Option {
	return func(o *redis.Options) {
		o.Username = username
	}
}

// New connects to the Redis server at addr and verifies the connection.
// An empty addr uses DefaultAddr.
func New(ctx context.Context, addr string, opts ...Option) (*Store, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	o := &redis.Options{Addr: addr}
	for _, opt := range opts {
		opt(o)
	}

	client := redis.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return &Store{client: client}, nil
}

// NewFromClient wraps an existing client. The store takes ownership of it.
func NewFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return translate(s.client.Set(ctx, key, value, 0).Err())
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, translate(err)
	}
	return data, nil
}

// Incr increments the integer stored under key.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	return n, translate(err)
}

// RPush appends value to the list stored under key.
func (s *Store) RPush(ctx context.Context, key string, value []byte) (int64, error) {
	n, err := s.client.RPush(ctx, key, value).Result()
	return n, translate(err)
}

// LRange returns the list elements between start and stop.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	items, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, translate(err)
	}
	out := make([][]byte, len(items))
	for i, item := range items {
		out[i] = []byte(item)
	}
	return out, nil
}

// FlushDB removes every key in the selected database.
func (s *Store) FlushDB(ctx context.Context) error {
	return translate(s.client.FlushDB(ctx).Err())
}

// Close closes the client and its connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// translate maps Redis replies onto the kv sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return kv.ErrNotFound
	}
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "WRONGTYPE"):
		return fmt.Errorf("%w: %s", kv.ErrWrongType, msg)
	case strings.Contains(msg, "not an integer"):
		return fmt.Errorf("%w: %s", kv.ErrNotInteger, msg)
	}
	return err
}
