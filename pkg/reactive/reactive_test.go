package reactive

import (
	"errors"
	"sync"
	"testing"
)

type recordingInstrumentation struct {
	mu       sync.Mutex
	notified []int
	runs     map[string]int
	failures map[string]int
}

func newRecordingInstrumentation(t *testing.T) *recordingInstrumentation {
	t.Helper()
	r := &recordingInstrumentation{runs: map[string]int{}, failures: map[string]int{}}
	SetInstrumentation(r)
	t.Cleanup(func() { SetInstrumentation(nil) })
	return r
}

func (r *recordingInstrumentation) Notified(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, n)
}

func (r *recordingInstrumentation) Ran(kind string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[kind]++
	if !ok {
		r.failures[kind]++
	}
}

func TestRefBasic(t *testing.T) {
	count := NewRef(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Peek() != 10 {
		t.Errorf("expected value 10, got %d", count.Peek())
	}
}

func TestRefNotifiesOnlyOnChange(t *testing.T) {
	count := NewRef(0)
	runs := 0
	NewEffect(func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	})

	count.Set(0)
	if runs != 1 {
		t.Errorf("same value should not notify, got %d runs", runs)
	}

	count.Set(1)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestRefSliceIdentity(t *testing.T) {
	items := []int{1, 2}
	ref := NewRef(items)
	runs := 0
	NewEffect(func() Cleanup {
		_ = ref.Get()
		runs++
		return nil
	})

	ref.Set(items)
	if runs != 1 {
		t.Errorf("same slice should not notify, got %d runs", runs)
	}

	ref.Set([]int{1, 2})
	if runs != 2 {
		t.Errorf("new slice should notify, got %d runs", runs)
	}
}

func TestRefWithEquals(t *testing.T) {
	ref := NewRef([]int{1}).WithEquals(func(a, b []int) bool { return len(a) == len(b) })
	runs := 0
	NewEffect(func() Cleanup {
		_ = ref.Get()
		runs++
		return nil
	})

	ref.Set([]int{9})
	if runs != 1 {
		t.Errorf("equal length should not notify, got %d runs", runs)
	}
	ref.Set([]int{1, 2})
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestPeekDoesNotTrack(t *testing.T) {
	count := NewRef(1)
	runs := 0
	NewEffect(func() Cleanup {
		_ = count.Peek()
		runs++
		return nil
	})

	count.Set(2)
	if runs != 1 {
		t.Errorf("Peek should not subscribe, got %d runs", runs)
	}
	if count.Observer().Subscribers() != 0 {
		t.Errorf("expected no subscribers, got %d", count.Observer().Subscribers())
	}
}

func TestDependencyCorrectness(t *testing.T) {
	a := NewRef(1)
	b := NewRef(2)
	sum := NewComputed(func() int { return a.Get() + b.Get() })

	var seen []int
	NewEffect(func() Cleanup {
		seen = append(seen, sum.Get())
		return nil
	})

	a.Set(10)
	b.Set(20)

	want := []int{3, 12, 30}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("run %d: expected %d, got %d", i, want[i], seen[i])
		}
	}
}

func TestDiamondRunsOnce(t *testing.T) {
	a := NewRef(1)
	double := NewComputed(func() int { return a.Get() * 2 })
	triple := NewComputed(func() int { return a.Get() * 3 })

	var seen []int
	NewEffect(func() Cleanup {
		seen = append(seen, double.Get()+triple.Get())
		return nil
	})

	a.Set(2)

	if len(seen) != 2 {
		t.Fatalf("expected 2 effect runs, got %d (%v)", len(seen), seen)
	}
	if seen[1] != 10 {
		t.Errorf("expected consistent value 10, got %d", seen[1])
	}
}

func TestDynamicPruning(t *testing.T) {
	useA := NewRef(true)
	a := NewRef("a")
	b := NewRef("b")

	runs := 0
	var last string
	NewEffect(func() Cleanup {
		runs++
		if useA.Get() {
			last = a.Get()
		} else {
			last = b.Get()
		}
		return nil
	})

	useA.Set(false)
	if last != "b" {
		t.Fatalf("expected b, got %q", last)
	}

	before := runs
	a.Set("changed")
	if runs != before {
		t.Errorf("pruned dependency re-ran the effect (%d -> %d)", before, runs)
	}
	if n := a.Observer().Subscribers(); n != 0 {
		t.Errorf("expected pruned observer to have 0 subscribers, got %d", n)
	}

	b.Set("B")
	if last != "B" {
		t.Errorf("expected B, got %q", last)
	}
}

func TestComputedStaysDirtyWithoutSubscribers(t *testing.T) {
	a := NewRef(1)
	evals := 0
	c := NewComputed(func() int {
		evals++
		return a.Get() + 1
	})

	if evals != 1 {
		t.Fatalf("expected eager first evaluation, got %d", evals)
	}

	a.Set(5)
	if evals != 1 {
		t.Errorf("computed without subscribers should not recompute, got %d evaluations", evals)
	}
	if !c.Dirty() {
		t.Error("expected computed to be dirty")
	}

	if v := c.Get(); v != 6 {
		t.Errorf("expected 6, got %d", v)
	}
	if evals != 2 {
		t.Errorf("expected 2 evaluations, got %d", evals)
	}

	_ = c.Get()
	if evals != 2 {
		t.Errorf("clean computed should not recompute, got %d evaluations", evals)
	}
}

func TestComputedKeepsValueWhenItPanics(t *testing.T) {
	a := NewRef(1)
	c := NewComputed(func() int {
		if a.Get() == 2 {
			panic("two")
		}
		return a.Get() * 10
	})
	var last int
	NewEffect(func() Cleanup {
		last = c.Get()
		return nil
	})

	a.Set(2)
	if v := c.Peek(); v != 10 {
		t.Errorf("expected the cached 10 after a failed run, got %d", v)
	}
	if last != 10 {
		t.Errorf("effect should still see 10, got %d", last)
	}

	a.Set(3)
	if v := c.Get(); v != 30 {
		t.Errorf("expected 30 after the next change, got %d", v)
	}
	if last != 30 {
		t.Errorf("effect should see 30, got %d", last)
	}
}

func TestComputedSelfReadDoesNotLoop(t *testing.T) {
	a := NewRef(1)
	evals := 0
	var c *Computed[int]
	c = NewComputed(func() int {
		evals++
		if c != nil {
			_ = c.Get()
		}
		return a.Get() + 1
	})

	var seen int
	NewEffect(func() Cleanup {
		seen = c.Get()
		return nil
	})

	a.Set(2)
	if seen != 3 {
		t.Errorf("expected 3, got %d", seen)
	}
	if evals != 2 {
		t.Errorf("expected 2 evaluations, got %d", evals)
	}
	if c.Observer().Subscribers() != 1 {
		t.Errorf("computed must not subscribe to itself, got %d subscribers", c.Observer().Subscribers())
	}
}

func TestComputedNotifiesOnlyOnChange(t *testing.T) {
	a := NewRef(1)
	parity := NewComputed(func() bool { return a.Get()%2 == 0 })

	runs := 0
	NewEffect(func() Cleanup {
		_ = parity.Get()
		runs++
		return nil
	})

	a.Set(3)
	if runs != 1 {
		t.Errorf("unchanged computed should not re-run dependents, got %d runs", runs)
	}

	a.Set(4)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestComputedWriteRejected(t *testing.T) {
	c := NewComputed(func() int { return 1 })

	err := c.Write(2)
	if !errors.Is(err, ErrInvalidMutation) {
		t.Fatalf("expected ErrInvalidMutation, got %v", err)
	}
	if c.Get() != 1 {
		t.Errorf("write must be a no-op, got %d", c.Get())
	}
}

func TestEffectCleanup(t *testing.T) {
	count := NewRef(0)
	var log []string

	e := NewEffect(func() Cleanup {
		n := count.Get()
		log = append(log, "run")
		return func() {
			_ = n
			log = append(log, "cleanup")
		}
	})

	count.Set(1)
	e.Dispose()

	want := []string{"run", "cleanup", "run", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("step %d: expected %s, got %s", i, want[i], log[i])
		}
	}
}

func TestEffectDispose(t *testing.T) {
	count := NewRef(0)
	runs := 0
	e := NewEffect(func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	})

	e.Dispose()
	count.Set(1)

	if runs != 1 {
		t.Errorf("disposed effect should not run, got %d runs", runs)
	}
	if !e.Disposed() {
		t.Error("expected Disposed to be true")
	}
	if n := count.Observer().Subscribers(); n != 0 {
		t.Errorf("expected 0 subscribers after dispose, got %d", n)
	}
	if n := Observing(e); n != 0 {
		t.Errorf("expected disposed effect to observe nothing, got %d", n)
	}
}

func TestEffectPanicIsRecovered(t *testing.T) {
	rec := newRecordingInstrumentation(t)
	count := NewRef(0)
	runs := 0

	NewEffect(func() Cleanup {
		runs++
		if count.Get() == 1 {
			panic("boom")
		}
		return nil
	})

	count.Set(1)
	count.Set(2)

	if runs != 3 {
		t.Errorf("expected 3 runs, got %d", runs)
	}
	if rec.failures["effect"] != 1 {
		t.Errorf("expected 1 failed effect run, got %d", rec.failures["effect"])
	}
	if n := count.Observer().Subscribers(); n != 1 {
		t.Errorf("failed run must keep previous edges, got %d subscribers", n)
	}
}

func TestPanicDoesNotAbortNotify(t *testing.T) {
	count := NewRef(0)
	var second int

	NewEffect(func() Cleanup {
		if count.Get() > 0 {
			panic("first")
		}
		return nil
	})
	NewEffect(func() Cleanup {
		second = count.Get()
		return nil
	})

	count.Set(7)
	if second != 7 {
		t.Errorf("second effect should still run, got %d", second)
	}
}

func TestActivateReportsFailure(t *testing.T) {
	fail := true
	e := NewEffect(func() Cleanup {
		if fail {
			panic("boom")
		}
		return nil
	})

	e.node().markDirty()
	if Activate(e) {
		t.Error("expected Activate to report failure")
	}

	fail = false
	e.node().markDirty()
	if !Activate(e) {
		t.Error("expected Activate to report success")
	}
}

func TestEffectWritingItsOwnDependency(t *testing.T) {
	count := NewRef(0)
	runs := 0
	NewEffect(func() Cleanup {
		runs++
		if v := count.Get(); v < 3 {
			count.Set(v + 1)
		}
		return nil
	})

	if runs != 1 {
		t.Errorf("effect must not re-enter itself, got %d runs", runs)
	}
	if count.Peek() != 1 {
		t.Errorf("expected 1, got %d", count.Peek())
	}
	if count.Observer().Subscribers() != 1 {
		t.Errorf("effect must stay subscribed, got %d", count.Observer().Subscribers())
	}
}

func TestWatch(t *testing.T) {
	a := NewRef(1)
	other := NewRef("x")
	var calls []int

	w := Watch(func() int { return a.Get() * 10 }, func(v int) {
		_ = other.Get()
		calls = append(calls, v)
	})

	a.Set(2)
	other.Set("y")
	a.Set(2)

	if len(calls) != 2 || calls[0] != 10 || calls[1] != 20 {
		t.Errorf("expected [10 20], got %v", calls)
	}
	if w.Value() != 20 {
		t.Errorf("expected cached 20, got %d", w.Value())
	}
	if other.Observer().Subscribers() != 0 {
		t.Error("callback reads must not be tracked")
	}

	w.Dispose()
	a.Set(3)
	if len(calls) != 2 {
		t.Errorf("disposed watcher was called: %v", calls)
	}
}

func TestWatchSkipsUnchangedSource(t *testing.T) {
	a := NewRef(1)
	calls := 0
	Watch(func() bool { return a.Get() > 0 }, func(bool) { calls++ })

	a.Set(2)
	a.Set(3)
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	a.Set(-1)
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestBatchSingleRun(t *testing.T) {
	first := NewRef("")
	last := NewRef("")
	runs := 0
	var full string
	NewEffect(func() Cleanup {
		runs++
		full = first.Get() + " " + last.Get()
		return nil
	})

	Batch(func() {
		first.Set("Ada")
		last.Set("Lovelace")
		if runs != 1 {
			t.Errorf("batched writes must not run effects early, got %d runs", runs)
		}
	})

	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
	if full != "Ada Lovelace" {
		t.Errorf("expected %q, got %q", "Ada Lovelace", full)
	}
}

func TestBatchNested(t *testing.T) {
	count := NewRef(0)
	runs := 0
	NewEffect(func() Cleanup {
		_ = count.Get()
		runs++
		return nil
	})

	Batch(func() {
		count.Set(1)
		Batch(func() {
			count.Set(2)
		})
		if runs != 1 {
			t.Errorf("inner batch must not flush, got %d runs", runs)
		}
		if !InBatch() {
			t.Error("expected InBatch inside batch")
		}
	})

	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
	if InBatch() {
		t.Error("expected InBatch false after batch")
	}
}

func TestBatchComputedSeesAllWrites(t *testing.T) {
	a := NewRef(1)
	b := NewRef(1)
	sum := NewComputed(func() int { return a.Get() + b.Get() })

	var seen []int
	NewEffect(func() Cleanup {
		seen = append(seen, sum.Get())
		return nil
	})

	Batch(func() {
		a.Set(10)
		b.Set(20)
	})

	if len(seen) != 2 || seen[1] != 30 {
		t.Errorf("expected [2 30], got %v", seen)
	}
}

func TestUntracked(t *testing.T) {
	count := NewRef(0)
	runs := 0
	NewEffect(func() Cleanup {
		runs++
		Untracked(func() { _ = count.Get() })
		return nil
	})

	count.Set(1)
	if runs != 1 {
		t.Errorf("untracked read should not subscribe, got %d runs", runs)
	}
}

func TestActive(t *testing.T) {
	if Active() != nil {
		t.Fatal("expected no active subscriber")
	}
	var inside Subscriber
	e := NewEffect(func() Cleanup {
		inside = Active()
		return nil
	})
	if inside != Subscriber(e) {
		t.Error("expected effect to be active during its run")
	}
	if Active() != nil {
		t.Error("expected no active subscriber after run")
	}
}

func TestNotifyInstrumentation(t *testing.T) {
	rec := newRecordingInstrumentation(t)
	count := NewRef(0)
	NewEffect(func() Cleanup {
		_ = count.Get()
		return nil
	})
	NewEffect(func() Cleanup {
		_ = count.Get()
		return nil
	})

	count.Set(1)

	if len(rec.notified) != 1 || rec.notified[0] != 2 {
		t.Errorf("expected one flush activating 2, got %v", rec.notified)
	}
	if rec.runs["effect"] != 4 {
		t.Errorf("expected 4 effect runs, got %d", rec.runs["effect"])
	}
}

func TestIdentical(t *testing.T) {
	s := []int{1}
	m := map[string]int{"a": 1}
	type withAny struct{ V any }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"nil nil", nil, nil, true},
		{"nil value", nil, 0, false},
		{"same slice", s, s, true},
		{"equal slices", []int{1}, []int{1}, false},
		{"same map", m, m, true},
		{"equal maps", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"struct holding slice", withAny{[]int{1}}, withAny{[]int{1}}, false},
		{"equal structs", withAny{1}, withAny{1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := identical(tt.a, tt.b); got != tt.want {
				t.Errorf("identical(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
