// Package kv defines the key-value store contract the cache is built on.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("kv: key not found")

	// ErrNotInteger is returned by Incr when the stored value is not a base-10 integer.
	ErrNotInteger = errors.New("kv: value is not an integer")

	// ErrWrongType is returned when a string operation hits a list key or vice versa.
	ErrWrongType = errors.New("kv: operation against a key holding the wrong kind of value")

	// ErrUnsupportedValue is returned by Encode for values that cannot be stored.
	ErrUnsupportedValue = errors.New("kv: unsupported value type")
)

// Store defines the interface for key-value backends.
// The operation set mirrors the subset of Redis commands the cache needs.
type Store interface {
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Incr atomically increments the integer stored under key and returns
	// the new value. A missing key counts as zero.
	Incr(ctx context.Context, key string) (int64, error)

	// RPush appends value to the list stored under key and returns the new length.
	RPush(ctx context.Context, key string, value []byte) (int64, error)

	// LRange returns the list elements between start and stop inclusive.
	// Negative indexes count from the end of the list; -1 is the last element.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// FlushDB removes every key.
	FlushDB(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Encode converts a value into the bytes a Redis server would store for it.
// Integers are base-10, floats use the shortest representation that
// round-trips.
func Encode(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case int:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int8:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint8:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint16:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint64:
		return strconv.AppendUint(nil, v, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

// Range resolves Redis-style start/stop indexes against a list of length n.
// It returns the half-open interval [lo, hi) to slice, empty when lo >= hi.
func Range(n, start, stop int64) (lo, hi int64) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0
	}
	return start, stop + 1
}
