package stash

import (
	"context"
	"fmt"
	"strconv"
)

// Converter turns the raw bytes of a stored value back into a Go value.
// It receives nil for a missing key.
type Converter[T any] func(raw []byte) (T, error)

// Get returns the value under key converted by conv.
// With a nil conv, the raw bytes are returned when T is []byte and
// ErrNoConverter otherwise.
func Get[T any](ctx context.Context, c *Cache, key string, conv Converter[T]) (T, error) {
	var zero T
	raw, err := c.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if conv == nil {
		if v, ok := any(raw).(T); ok {
			return v, nil
		}
		return zero, fmt.Errorf("%w for %T", ErrNoConverter, zero)
	}
	return conv(raw)
}

// AsString decodes raw as text.
func AsString(raw []byte) (string, error) {
	return string(raw), nil
}

// AsInt parses raw as a base-10 integer.
func AsInt(raw []byte) (int, error) {
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("converting to int: %w", err)
	}
	return n, nil
}

// AsFloat parses raw as a 64-bit float.
func AsFloat(raw []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("converting to float: %w", err)
	}
	return f, nil
}
