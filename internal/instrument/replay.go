package instrument

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/discochess/stash/internal/kv"
)

// Reader is the store capability needed to inspect recorded calls.
type Reader interface {
	Get(ctx context.Context, key string) ([]byte, error)
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// Call is one recorded invocation.
type Call struct {
	Input  string
	Output string
}

// Calls returns the counter value for name. A missing counter is zero.
func Calls(ctx context.Context, r Reader, name string) (int64, error) {
	n, _, err := count(ctx, r, name)
	return n, err
}

// ReadHistory returns the recorded invocations of name in call order.
// Unpaired trailing entries, left by a call still in flight, are dropped.
func ReadHistory(ctx context.Context, r Reader, name string) ([]Call, error) {
	inputs, err := r.LRange(ctx, InputsKey(name), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading inputs of %s: %w", name, err)
	}
	outputs, err := r.LRange(ctx, OutputsKey(name), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading outputs of %s: %w", name, err)
	}

	n := min(len(inputs), len(outputs))
	calls := make([]Call, n)
	for i := range calls {
		calls[i] = Call{Input: string(inputs[i]), Output: string(outputs[i])}
	}
	return calls, nil
}

// Replay writes the call history of name to w:
//
//	Cache.Store was called 2 times:
//	Cache.Store("foo") -> 1b4e28ba-2fa1-11d2-883f-0016d3cca427
//	Cache.Store(42) -> 6fa459ea-ee8a-3ca4-894e-db77e160355e
//
// The header uses the call counter, or the history length when name was
// never counted.
func Replay(ctx context.Context, r Reader, name string, w io.Writer) error {
	calls, err := ReadHistory(ctx, r, name)
	if err != nil {
		return err
	}
	n, counted, err := count(ctx, r, name)
	if err != nil {
		return err
	}
	if !counted {
		n = int64(len(calls))
	}

	if _, err := fmt.Fprintf(w, "%s was called %d times:\n", name, n); err != nil {
		return err
	}
	for _, c := range calls {
		if _, err := fmt.Fprintf(w, "%s(%s) -> %s\n", name, c.Input, c.Output); err != nil {
			return err
		}
	}
	return nil
}

func count(ctx context.Context, r Reader, name string) (int64, bool, error) {
	raw, err := r.Get(ctx, name)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading call count of %s: %w", name, err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("call count of %s: %w", name, err)
	}
	return n, true, nil
}
