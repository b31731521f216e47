package reconcile

import (
	"log/slog"
	"time"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

// DefaultBruteForceThreshold is the largest keyed window matched by
// linear scan instead of a key map.
const DefaultBruteForceThreshold = 4

// Instrumentation receives counters from the reconciler.
type Instrumentation interface {
	// Patched is called after every patch pass with its duration.
	Patched(d time.Duration)

	// Moved is called for every keyed node moved to a new position.
	Moved()

	// DuplicateKey is called for every duplicate key found in a list.
	DuplicateKey()
}

type noopInstrumentation struct{}

func (noopInstrumentation) Patched(time.Duration) {}
func (noopInstrumentation) Moved()                {}
func (noopInstrumentation) DuplicateKey()         {}

// Reconciler mounts and patches trees on one surface.
type Reconciler struct {
	surface        surface.Surface
	logger         *slog.Logger
	threshold      int
	staticFastPath bool
	instr          Instrumentation

	// bindings holds the live state of mounted nodes.
	bindings map[*vdom.Node]*binding
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBruteForceThreshold sets the largest keyed window matched by linear
// scan. Values below 1 disable the brute force path.
func WithBruteForceThreshold(n int) Option {
	return func(r *Reconciler) { r.threshold = n }
}

// WithStaticFastPath lets Patch adopt the mounted subtree of an old static
// node when the new node is static with the same fingerprint, without
// visiting the subtree.
func WithStaticFastPath(enabled bool) Option {
	return func(r *Reconciler) { r.staticFastPath = enabled }
}

// WithInstrumentation sets the counters sink.
func WithInstrumentation(i Instrumentation) Option {
	return func(r *Reconciler) {
		if i != nil {
			r.instr = i
		}
	}
}

// New creates a Reconciler writing to s.
func New(s surface.Surface, opts ...Option) *Reconciler {
	r := &Reconciler{
		surface:   s,
		logger:    slog.Default(),
		threshold: DefaultBruteForceThreshold,
		instr:     noopInstrumentation{},
		bindings:  make(map[*vdom.Node]*binding),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Surface returns the surface the reconciler writes to.
func (r *Reconciler) Surface() surface.Surface {
	return r.surface
}

// Render mounts n as a child of parent right after the unit after (zero
// for the first position). It returns the last unit of n.
func (r *Reconciler) Render(n *vdom.Node, parent, after surface.Handle) surface.Handle {
	var last surface.Handle
	reactive.Untracked(func() {
		last = r.renderAt(n, parent, after)
	})
	return last
}

// Patch updates the mounted tree old to match new. new takes over the
// display units of old. A nil old mounts new as the first child of
// parent; a nil new unmounts old.
func (r *Reconciler) Patch(old, new *vdom.Node, parent surface.Handle) {
	start := time.Now()
	reactive.Untracked(func() {
		r.patch(old, new, parent)
	})
	r.instr.Patched(time.Since(start))
}

// Unmount tears down n and removes its display units.
func (r *Reconciler) Unmount(n *vdom.Node) {
	reactive.Untracked(func() {
		r.unmount(n, false, true)
	})
}

// Replace unmounts old and mounts new in its position.
func (r *Reconciler) Replace(old, new *vdom.Node, parent surface.Handle) {
	reactive.Untracked(func() {
		r.replace(old, new, parent)
	})
}

// Mounted returns the number of mounted nodes with live bindings.
func (r *Reconciler) Mounted() int {
	return len(r.bindings)
}

// Units returns the display units of a mounted node in document order.
func Units(n *vdom.Node) []surface.Handle {
	return units(n, nil)
}

func units(n *vdom.Node, out []surface.Handle) []surface.Handle {
	if n == nil {
		return out
	}
	switch n.Kind {
	case vdom.KindComponent:
		for _, c := range n.Children {
			out = units(c, out)
		}
	case vdom.KindBlock:
		out = append(out, n.Handle)
		for _, c := range n.Children {
			out = units(c, out)
		}
	default:
		out = append(out, n.Handle)
	}
	return out
}

func lastUnit(n *vdom.Node) surface.Handle {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case vdom.KindComponent:
		if len(n.Children) > 0 {
			return lastUnit(n.Children[len(n.Children)-1])
		}
		return 0
	case vdom.KindBlock:
		for i := len(n.Children) - 1; i >= 0; i-- {
			if h := lastUnit(n.Children[i]); h != 0 {
				return h
			}
		}
		return n.Handle
	default:
		return n.Handle
	}
}
