package redisstashfx

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/discochess/stash"
)

func TestModule(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("stale", "x")
	reg := prometheus.NewRegistry()

	var cache *stash.Cache
	app := fxtest.New(t,
		fx.Supply(Config{Addr: mr.Addr(), CacheSize: 16, Registerer: reg}),
		fx.Provide(func() *zap.Logger { return zaptest.NewLogger(t) }),
		Module,
		fx.Populate(&cache),
	)
	app.RequireStart()

	if mr.Exists("stale") {
		t.Error("startup should flush the database")
	}

	ctx := context.Background()
	key, err := cache.Store(ctx, "foo")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if got, err := mr.Get(key); err != nil || got != "foo" {
		t.Errorf("server GET %s = %q, %v; want %q", key, got, err, "foo")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Error("no metrics registered with the configured registerer")
	}

	app.RequireStop()

	if _, err := cache.Store(ctx, "bar"); err == nil {
		t.Error("Store() after stop should fail")
	}
}

func TestModule_KeepExisting(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("kept", "x")

	var cache *stash.Cache
	app := fxtest.New(t,
		fx.Supply(Config{Addr: mr.Addr(), KeepExisting: true}),
		fx.Provide(func() *zap.Logger { return zaptest.NewLogger(t) }),
		Module,
		fx.Populate(&cache),
	)
	app.RequireStart()
	defer app.RequireStop()

	got, err := cache.GetString(context.Background(), "kept")
	if err != nil {
		t.Fatalf("GetString() error = %v", err)
	}
	if got != "x" {
		t.Errorf("GetString() = %q, want %q", got, "x")
	}
}

func TestModule_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	app := fx.New(
		fx.Supply(Config{Addr: addr}),
		fx.Provide(func() *zap.Logger { return zaptest.NewLogger(t) }),
		Module,
		fx.Invoke(func(*stash.Cache) {}),
		fx.NopLogger,
	)
	if app.Err() == nil {
		t.Error("expected error when Redis is unreachable")
	}
}
