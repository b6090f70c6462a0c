package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/discochess/stash/internal/stats"
)

func TestNew_NilLogger(t *testing.T) {
	c := New(nil)
	// Must not panic.
	c.IncCounter(stats.MetricStores, 1)
}

func TestCollector_LogsMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(zap.New(core))

	c.IncCounter(stats.MetricStores, 2)
	c.SetGauge(stats.MetricCacheSize, 7)
	c.ObserveHistogram(stats.MetricKVLatency, 0.25)

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("logged %d entries, want 3", len(entries))
	}

	tests := []struct {
		message string
		metric  string
	}{
		{"counter", stats.MetricStores},
		{"gauge", stats.MetricCacheSize},
		{"histogram", stats.MetricKVLatency},
	}
	for i, tt := range tests {
		e := entries[i]
		if e.Message != tt.message {
			t.Errorf("entry %d message = %q, want %q", i, e.Message, tt.message)
		}
		if got := e.ContextMap()["metric"]; got != tt.metric {
			t.Errorf("entry %d metric = %v, want %q", i, got, tt.metric)
		}
	}

	if got := entries[0].ContextMap()["delta"]; got != int64(2) {
		t.Errorf("counter delta = %v, want 2", got)
	}
}

func TestCollector_WithLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	New(zap.New(core)).IncCounter(stats.MetricStores, 1)
	if n := logs.Len(); n != 0 {
		t.Errorf("debug-level collector logged %d entries at info, want 0", n)
	}

	New(zap.New(core), WithLevel(zapcore.InfoLevel)).IncCounter(stats.MetricStores, 1)
	if n := logs.Len(); n != 1 {
		t.Errorf("info-level collector logged %d entries, want 1", n)
	}
}
