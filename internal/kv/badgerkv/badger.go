// Package badgerkv implements an embedded, persistent key-value backend on Badger.
//
// Strings live under the "s\x00" prefix. A list is a length record under
// "l\x00<key>" plus one record per element under "i\x00<key>\x00<index>",
// with the index big-endian so elements iterate in insertion order. Values,
// but not list lengths, pass through the configured codec.
package badgerkv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/discochess/stash/internal/codec"
	"github.com/discochess/stash/internal/codec/noopcodec"
	"github.com/discochess/stash/internal/kv"
)

// Compile-time check that Store implements kv.Store.
var _ kv.Store = (*Store)(nil)

// Store is a Badger-backed key-value store.
type Store struct {
	db    *badger.DB
	codec codec.Codec
}

type config struct {
	badger badger.Options
	codec  codec.Codec
}

// Option configures the store.
type Option func(*config)

// InMemory keeps all data in memory. The dir passed to New is ignored.
func InMemory() Option {
	return func(c *config) {
		c.badger = c.badger.WithInMemory(true).WithDir("").WithValueDir("")
	}
}

// WithLogger routes Badger's internal logging through zap.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.badger = c.badger.WithLogger(newLogger(l))
	}
}

// WithCodec compresses every stored value with c.
// Default is no compression.
func WithCodec(cd codec.Codec) Option {
	return func(c *config) {
		c.codec = cd
	}
}

// New opens (or creates) a Badger database in dir.
func New(dir string, opts ...Option) (*Store, error) {
	cfg := config{
		badger: badger.DefaultOptions(dir).WithLogger(newLogger(nil)),
		codec:  noopcodec.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := badger.Open(cfg.badger)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", dir, err)
	}
	return &Store{db: db, codec: cfg.codec}, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := s.dropList(txn, key); err != nil {
			return err
		}
		data, err := s.codec.Encode(value)
		if err != nil {
			return fmt.Errorf("encoding value: %w", err)
		}
		return txn.Set(stringKey(key), data)
	})
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stringKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			if _, lerr := listLen(txn, key); lerr == nil {
				return kv.ErrWrongType
			}
			return kv.ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err = s.value(item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Incr increments the integer stored under key.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		n = 0
		item, err := txn.Get(stringKey(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if _, lerr := listLen(txn, key); lerr == nil {
				return kv.ErrWrongType
			}
		case err != nil:
			return err
		default:
			raw, err := s.value(item)
			if err != nil {
				return err
			}
			n, err = strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return kv.ErrNotInteger
			}
		}
		n++
		data, err := s.codec.Encode(strconv.AppendInt(nil, n, 10))
		if err != nil {
			return fmt.Errorf("encoding value: %w", err)
		}
		return txn.Set(stringKey(key), data)
	})
	return n, err
}

// RPush appends value to the list stored under key.
func (s *Store) RPush(ctx context.Context, key string, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(stringKey(key)); err == nil {
			return kv.ErrWrongType
		}
		length, err := listLen(txn, key)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		data, err := s.codec.Encode(value)
		if err != nil {
			return fmt.Errorf("encoding value: %w", err)
		}
		if err := txn.Set(itemKey(key, length), data); err != nil {
			return err
		}
		n = length + 1
		return txn.Set(listKey(key), encodeIndex(uint64(n)))
	})
	return n, err
}

// LRange returns the list elements between start and stop.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		length, err := listLen(txn, key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			if _, serr := txn.Get(stringKey(key)); serr == nil {
				return kv.ErrWrongType
			}
			return nil
		}
		if err != nil {
			return err
		}

		lo, hi := kv.Range(length, start, stop)
		out = make([][]byte, 0, hi-lo)
		for i := lo; i < hi; i++ {
			item, err := txn.Get(itemKey(key, i))
			if err != nil {
				return fmt.Errorf("reading list element %d: %w", i, err)
			}
			data, err := s.value(item)
			if err != nil {
				return err
			}
			out = append(out, data)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FlushDB removes every key.
func (s *Store) FlushDB(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.DropAll()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// update runs fn in a read-write transaction, retrying on conflicts until
// ctx is done.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ctxErr, err)
		}
	}
}

// value returns the decoded value of item.
func (s *Store) value(item *badger.Item) ([]byte, error) {
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	data, err := s.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return data, nil
}

// dropList deletes the list stored under key, if any.
func (s *Store) dropList(txn *badger.Txn, key string) error {
	length, err := listLen(txn, key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for i := int64(0); i < length; i++ {
		if err := txn.Delete(itemKey(key, i)); err != nil {
			return err
		}
	}
	return txn.Delete(listKey(key))
}

func listLen(txn *badger.Txn, key string) (int64, error) {
	item, err := txn.Get(listKey(key))
	if err != nil {
		return 0, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("corrupt list length for %q", key)
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

func stringKey(key string) []byte {
	return append([]byte("s\x00"), key...)
}

func listKey(key string) []byte {
	return append([]byte("l\x00"), key...)
}

func itemKey(key string, index int64) []byte {
	b := append([]byte("i\x00"), key...)
	b = append(b, 0)
	return append(b, encodeIndex(uint64(index))...)
}

func encodeIndex(n uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return buf[:]
}
