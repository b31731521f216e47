package vtest

import (
	"testing"

	"github.com/vango-dev/lux/pkg/reconcile"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

// Harness mounts trees on an in-memory surface.
type Harness struct {
	t    testing.TB
	mem  *surface.Memory
	r    *reconcile.Reconciler
	root *vdom.Node
}

// New creates a Harness. The reconciler is built with opts.
func New(t testing.TB, opts ...reconcile.Option) *Harness {
	return newHarness(t, opts...)
}

func newHarness(t testing.TB, opts ...reconcile.Option) *Harness {
	mem := surface.NewMemory()
	return &Harness{t: t, mem: mem, r: reconcile.New(mem, opts...)}
}

// Memory returns the surface.
func (h *Harness) Memory() *surface.Memory { return h.mem }

// Reconciler returns the reconciler.
func (h *Harness) Reconciler() *reconcile.Reconciler { return h.r }

// Mount renders n at the root of the surface and clears the op log.
func (h *Harness) Mount(n *vdom.Node) *vdom.Node {
	h.r.Render(n, h.mem.Root(), 0)
	h.root = n
	h.mem.ResetOps()
	return n
}

// Patch patches the mounted root into next. next becomes the root.
func (h *Harness) Patch(next *vdom.Node) {
	h.r.Patch(h.root, next, h.mem.Root())
	h.root = next
}

// Root returns the mounted root.
func (h *Harness) Root() *vdom.Node { return h.root }

// ResetOps clears the op log.
func (h *Harness) ResetOps() { h.mem.ResetOps() }

// Click dispatches a click to the first unit of n.
func (h *Harness) Click(n *vdom.Node) {
	h.t.Helper()
	h.Dispatch(n, surface.Event{Type: "click"})
}

// Dispatch delivers e to the first unit of n.
func (h *Harness) Dispatch(n *vdom.Node, e surface.Event) {
	h.t.Helper()
	units := reconcile.Units(n)
	if len(units) == 0 {
		h.t.Fatalf("node %d is not mounted", n.ID)
		return
	}
	e.Target = units[0]
	if !h.mem.Dispatch(e) {
		h.t.Errorf("no %q listener on unit %d", e.Type, e.Target)
	}
}

// ExpectHTML asserts the rendered HTML of the surface.
func (h *Harness) ExpectHTML(want string) {
	h.t.Helper()
	ExpectHTML(h.t, h.mem, want)
}

// ExpectSnapshotJSON asserts the JSON snapshot of the surface.
func (h *Harness) ExpectSnapshotJSON(want string) {
	h.t.Helper()
	ExpectSnapshotJSON(h.t, h.mem, want)
}

// ExpectOps asserts how many ops of kind were recorded.
func (h *Harness) ExpectOps(kind surface.OpKind, n int) {
	h.t.Helper()
	if got := h.mem.Count(kind); got != n {
		h.t.Errorf("expected %d %s ops, got %d: %v", n, kind, got, h.mem.Ops())
	}
}

// ExpectOpCount asserts the total number of recorded ops.
func (h *Harness) ExpectOpCount(n int) {
	h.t.Helper()
	if got := h.mem.Count(); got != n {
		h.t.Errorf("expected %d ops, got %d: %v", n, got, h.mem.Ops())
	}
}

// ExpectNoOps asserts that nothing touched the surface.
func (h *Harness) ExpectNoOps() {
	h.t.Helper()
	h.ExpectOpCount(0)
}
