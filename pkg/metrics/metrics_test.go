package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/reconcile"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestInstrumentationCounters(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.Notified(3)
	m.Ran("effect", true)
	m.Ran("effect", false)
	m.Patched(time.Millisecond)
	m.Moved()
	m.DuplicateKey()

	if got := metricCounterValue(t, m.notifications); got != 3 {
		t.Errorf("notified_subscribers_total=%v, want 3", got)
	}
	if got := metricCounterValue(t, m.runs.WithLabelValues("effect", "error")); got != 1 {
		t.Errorf("subscriber_runs_total(error)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.patches); got != 1 {
		t.Errorf("patch_duration_seconds count=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.moves); got != 1 {
		t.Errorf("keyed_moves_total=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.duplicateKeys); got != 1 {
		t.Errorf("duplicate_keys_total=%v, want 1", got)
	}
}

func TestSurfaceCountsOps(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
	mem := surface.NewMemory()
	r := reconcile.New(m.Surface(mem), reconcile.WithInstrumentation(m))

	old := vdom.Ul(vdom.Li(vdom.Key("a")), vdom.Li(vdom.Key("b")))
	r.Render(old, mem.Root(), 0)
	next := vdom.Ul(vdom.Li(vdom.Key("b")), vdom.Li(vdom.Key("a")))
	r.Patch(old, next, mem.Root())

	if got := metricCounterValue(t, m.surfaceOps.WithLabelValues("create")); got != 3 {
		t.Errorf("surface_ops_total(create)=%v, want 3", got)
	}
	if got := metricCounterValue(t, m.surfaceOps.WithLabelValues("insert")); got != 4 {
		t.Errorf("surface_ops_total(insert)=%v, want 4", got)
	}
	if got := metricCounterValue(t, m.moves); got != 1 {
		t.Errorf("keyed_moves_total=%v, want 1", got)
	}
}

func TestReactiveInstrumentation(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))
	reactive.SetInstrumentation(m)
	defer reactive.SetInstrumentation(nil)

	v := reactive.NewRef(1)
	reactive.NewEffect(func() reactive.Cleanup {
		v.Get()
		return nil
	})
	v.Set(2)

	if got := metricCounterValue(t, m.runs.WithLabelValues("effect", "success")); got != 2 {
		t.Errorf("subscriber_runs_total(effect)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.notifications); got != 1 {
		t.Errorf("notified_subscribers_total=%v, want 1", got)
	}
}
