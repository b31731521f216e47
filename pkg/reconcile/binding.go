package reconcile

import (
	"fmt"
	"sync"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

// binding is the live state of a mounted node. It moves to the new node
// when a patch transfers the display unit.
type binding struct {
	node   *vdom.Node
	parent surface.Handle

	// values holds the attribute values last written to the unit.
	values   map[string]string
	watchers map[string]reactive.Subscriber
	events   map[string]*eventSlot

	text      reactive.Subscriber
	textValue string

	// effect re-renders a component or regenerates a block.
	effect *reactive.Effect
	// tree is the mounted output of a component.
	tree *vdom.Node
}

// eventSlot holds the current handler of a listener. The surface keeps
// one trampoline per (unit, event); patches only swap the handler.
type eventSlot struct {
	mu      sync.Mutex
	handler vdom.Handler
}

func (s *eventSlot) set(h vdom.Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

func (s *eventSlot) dispatch(e surface.Event) {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		return
	}
	reactive.Batch(func() { h(e) })
}

func (b *binding) dispose() {
	for name, w := range b.watchers {
		w.Dispose()
		delete(b.watchers, name)
	}
	if b.text != nil {
		b.text.Dispose()
		b.text = nil
	}
	if b.effect != nil {
		b.effect.Dispose()
		b.effect = nil
	}
}

// bind returns the binding of n, creating it when needed.
func (r *Reconciler) bind(n *vdom.Node, parent surface.Handle) *binding {
	b, ok := r.bindings[n]
	if !ok {
		b = &binding{node: n}
		r.bindings[n] = b
	}
	b.parent = parent
	return b
}

// transfer moves the display unit and binding of old to new.
func (r *Reconciler) transfer(old, new *vdom.Node, parent surface.Handle) {
	new.Handle = old.Handle
	new.Mounted = true
	old.Mounted = false

	if b, ok := r.bindings[old]; ok {
		delete(r.bindings, old)
		b.node = new
		b.parent = parent
		r.bindings[new] = b
	}
}

func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
