package prometheus

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// gather returns the single metric named name from reg.
func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		if len(f.GetMetric()) != 1 {
			t.Fatalf("%s has %d series, want 1", name, len(f.GetMetric()))
		}
		return f.GetMetric()[0]
	}
	t.Fatalf("metric %s not found in registry", name)
	return nil
}

func TestNew_DefaultRegistry(t *testing.T) {
	c := New(nil)
	if c.registry != prometheus.DefaultRegisterer {
		t.Error("New(nil) should use the default registerer")
	}
}

func TestCollector_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter("stash_test_total", 5)
	c.IncCounter("stash_test_total", 3)
	c.SetGauge("stash_test_size", 42)
	c.ObserveHistogram("stash_test_seconds", 0.5)
	c.ObserveHistogram("stash_test_seconds", 1.5)

	if got := gather(t, reg, "stash_test_total").GetCounter().GetValue(); got != 8 {
		t.Errorf("counter = %v, want 8", got)
	}
	if got := gather(t, reg, "stash_test_size").GetGauge().GetValue(); got != 42 {
		t.Errorf("gauge = %v, want 42", got)
	}
	if got := gather(t, reg, "stash_test_seconds").GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("histogram count = %v, want 2", got)
	}
}

func TestCollector_WithBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, WithBuckets([]float64{1, 10}))

	c.ObserveHistogram("bucketed", 5)

	buckets := gather(t, reg, "bucketed").GetHistogram().GetBucket()
	if len(buckets) != 2 {
		t.Fatalf("histogram has %d buckets, want 2", len(buckets))
	}
	if got := buckets[0].GetCumulativeCount(); got != 0 {
		t.Errorf("bucket le=1 count = %d, want 0", got)
	}
	if got := buckets[1].GetCumulativeCount(); got != 1 {
		t.Errorf("bucket le=10 count = %d, want 1", got)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncCounter("concurrent_total", 1)
			}
		}()
	}
	wg.Wait()

	if got := gather(t, reg, "concurrent_total").GetCounter().GetValue(); got != 1000 {
		t.Errorf("counter = %v, want 1000", got)
	}
}

func TestCollector_AdoptsRegisteredMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	existing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preexisting_total",
		Help: "preexisting_total",
	})
	reg.MustRegister(existing)
	existing.Add(100)

	New(reg).IncCounter("preexisting_total", 5)

	if got := gather(t, reg, "preexisting_total").GetCounter().GetValue(); got != 105 {
		t.Errorf("counter = %v, want 105", got)
	}
}
