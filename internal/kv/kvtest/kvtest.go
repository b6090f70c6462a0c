// Package kvtest provides a conformance suite for kv.Store implementations.
package kvtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/discochess/stash/internal/kv"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) kv.Store

// Run exercises every kv.Store operation against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s kv.Store)
	}{
		{"SetGet", testSetGet},
		{"GetMissing", testGetMissing},
		{"SetOverwrites", testSetOverwrites},
		{"Incr", testIncr},
		{"IncrNotInteger", testIncrNotInteger},
		{"RPushLRange", testRPushLRange},
		{"LRangeMissing", testLRangeMissing},
		{"FlushDB", testFlushDB},
		{"ConcurrentIncr", testConcurrentIncr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tt.fn(t, s)
		})
	}
}

func testSetGet(t *testing.T, s kv.Store) {
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("value")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get() = %q, want %q", got, "value")
	}
}

func testGetMissing(t *testing.T, s kv.Store) {
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func testSetOverwrites(t *testing.T, s kv.Store) {
	ctx := context.Background()
	for _, v := range []string{"first", "second"} {
		if err := s.Set(ctx, "k", []byte(v)); err != nil {
			t.Fatalf("Set(%q) error = %v", v, err)
		}
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Get() = %q, want %q", got, "second")
	}
}

func testIncr(t *testing.T, s kv.Store) {
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := s.Incr(ctx, "counter")
		if err != nil {
			t.Fatalf("Incr() error = %v", err)
		}
		if got != want {
			t.Errorf("Incr() = %d, want %d", got, want)
		}
	}

	raw, err := s.Get(ctx, "counter")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(raw) != "3" {
		t.Errorf("Get() = %q, want %q", raw, "3")
	}
}

func testIncrNotInteger(t *testing.T, s kv.Store) {
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := s.Incr(ctx, "k"); err == nil {
		t.Error("Incr() on non-integer value should return error")
	}
}

func testRPushLRange(t *testing.T, s kv.Store) {
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		n, err := s.RPush(ctx, "list", []byte(fmt.Sprintf("item-%d", i)))
		if err != nil {
			t.Fatalf("RPush() error = %v", err)
		}
		if n != int64(i) {
			t.Errorf("RPush() length = %d, want %d", n, i)
		}
	}

	tests := []struct {
		start, stop int64
		want        []string
	}{
		{0, -1, []string{"item-1", "item-2", "item-3", "item-4"}},
		{1, 2, []string{"item-2", "item-3"}},
		{-2, -1, []string{"item-3", "item-4"}},
		{2, 100, []string{"item-3", "item-4"}},
		{3, 1, nil},
	}
	for _, tt := range tests {
		got, err := s.LRange(ctx, "list", tt.start, tt.stop)
		if err != nil {
			t.Fatalf("LRange(%d, %d) error = %v", tt.start, tt.stop, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("LRange(%d, %d) returned %d items, want %d", tt.start, tt.stop, len(got), len(tt.want))
		}
		for i := range got {
			if string(got[i]) != tt.want[i] {
				t.Errorf("LRange(%d, %d)[%d] = %q, want %q", tt.start, tt.stop, i, got[i], tt.want[i])
			}
		}
	}
}

func testLRangeMissing(t *testing.T, s kv.Store) {
	got, err := s.LRange(context.Background(), "missing", 0, -1)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LRange() on missing key returned %d items, want 0", len(got))
	}
}

func testFlushDB(t *testing.T, s kv.Store) {
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := s.RPush(ctx, "list", []byte("x")); err != nil {
		t.Fatalf("RPush() error = %v", err)
	}

	if err := s.FlushDB(ctx); err != nil {
		t.Fatalf("FlushDB() error = %v", err)
	}

	if _, err := s.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Get() after FlushDB error = %v, want ErrNotFound", err)
	}
	items, err := s.LRange(ctx, "list", 0, -1)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("LRange() after FlushDB returned %d items, want 0", len(items))
	}
}

func testConcurrentIncr(t *testing.T, s kv.Store) {
	ctx := context.Background()
	const workers, perWorker = 8, 25

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := s.Incr(ctx, "counter"); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Incr() error = %v", err)
	}

	raw, err := s.Get(ctx, "counter")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if want := fmt.Sprint(workers * perWorker); string(raw) != want {
		t.Errorf("counter = %s, want %s", raw, want)
	}
}
