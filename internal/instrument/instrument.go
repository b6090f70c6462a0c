// Package instrument provides middleware that records how an operation is
// used: a call counter and an input/output history, both persisted in a
// key-value store so they survive the process and can be replayed later.
//
// Each middleware takes a Func and returns a Func with the same signature,
// so behaviors stack. For an operation named "Cache.Store":
//
//	op = CountCalls(st, "Cache.Store", CallHistory(st, "Cache.Store", op))
//
// increments the counter first, then records history around the call.
package instrument

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Func is an operation that can be decorated.
type Func[A, R any] func(ctx context.Context, arg A) (R, error)

// Counter is the store capability CountCalls needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// Recorder is the store capability CallHistory needs.
type Recorder interface {
	RPush(ctx context.Context, key string, value []byte) (int64, error)
}

// InputsKey returns the list key holding the input history of name.
func InputsKey(name string) string {
	return name + ":inputs"
}

// OutputsKey returns the list key holding the output history of name.
func OutputsKey(name string) string {
	return name + ":outputs"
}

// CountCalls increments the counter stored under name, then invokes fn.
// If the increment fails, fn is not invoked.
func CountCalls[A, R any](c Counter, name string, fn Func[A, R]) Func[A, R] {
	return func(ctx context.Context, arg A) (R, error) {
		if _, err := c.Incr(ctx, name); err != nil {
			var zero R
			return zero, fmt.Errorf("counting call to %s: %w", name, err)
		}
		return fn(ctx, arg)
	}
}

// CallHistory appends Repr(arg) to the input history of name, invokes fn,
// then appends the result to the output history.
//
// A failed invocation is recorded as error("<message>") so the two lists
// stay the same length.
func CallHistory[A, R any](r Recorder, name string, fn Func[A, R]) Func[A, R] {
	inputs, outputs := InputsKey(name), OutputsKey(name)
	return func(ctx context.Context, arg A) (R, error) {
		var zero R
		if _, err := r.RPush(ctx, inputs, []byte(Repr(arg))); err != nil {
			return zero, fmt.Errorf("recording input of %s: %w", name, err)
		}

		res, err := fn(ctx, arg)

		out := fmt.Sprint(res)
		if err != nil {
			out = "error(" + strconv.Quote(err.Error()) + ")"
		}
		if _, perr := r.RPush(ctx, outputs, []byte(out)); perr != nil {
			return zero, errors.Join(err, fmt.Errorf("recording output of %s: %w", name, perr))
		}
		return res, err
	}
}
