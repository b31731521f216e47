package reconcile

import (
	"time"

	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

// renderAt mounts n under parent right after the unit after and returns
// the last unit of n.
func (r *Reconciler) renderAt(n *vdom.Node, parent, after surface.Handle) surface.Handle {
	if n == nil {
		return after
	}
	if n.Mounted {
		// A node lives in one place; mounting it again moves it.
		r.moveAfter(n, parent, after)
		if h := lastUnit(n); h != 0 {
			return h
		}
		return after
	}
	switch n.Kind {
	case vdom.KindElement:
		return r.renderElement(n, parent, after)
	case vdom.KindText:
		return r.renderText(n, parent, after)
	case vdom.KindComment:
		h := r.surface.CreateUnit(surface.UnitComment, n.Text)
		n.Handle = h
		n.Mounted = true
		r.surface.InsertAfter(parent, after, h)
		return h
	case vdom.KindComponent:
		return r.renderComponent(n, parent, after)
	case vdom.KindBlock:
		return r.renderBlock(n, parent, after)
	default:
		r.logger.Warn("reconcile: skipping node", "code", luxerr.CodeUnknownKind,
			"kind", n.Kind.String(), "error", ErrUnknownKind)
		return after
	}
}

func (r *Reconciler) renderElement(n *vdom.Node, parent, after surface.Handle) surface.Handle {
	h := r.surface.CreateUnit(surface.UnitElement, n.Tag)
	n.Handle = h
	n.Mounted = true
	b := r.bind(n, parent)
	r.applyAttrs(h, b, n.Attrs)

	var prev surface.Handle
	for _, c := range n.Children {
		prev = r.renderAt(c, h, prev)
	}
	r.surface.InsertAfter(parent, after, h)
	return h
}

func (r *Reconciler) renderText(n *vdom.Node, parent, after surface.Handle) surface.Handle {
	if n.Value == nil {
		h := r.surface.CreateUnit(surface.UnitText, n.Text)
		n.Handle = h
		n.Mounted = true
		r.surface.InsertAfter(parent, after, h)
		return h
	}

	b := r.bind(n, parent)
	b.text = r.watchText(n.Value, b)
	h := r.surface.CreateUnit(surface.UnitText, b.textValue)
	n.Handle = h
	n.Mounted = true
	r.surface.InsertAfter(parent, after, h)
	return h
}

// watchText keeps b.textValue, and the text unit of b once it has one,
// in line with value.
func (r *Reconciler) watchText(value reactive.Reader, b *binding) reactive.Subscriber {
	return reactive.WatchReader(value, func(v any) {
		s := textOf(v)
		if b.node == nil || !b.node.Mounted || b.node.Handle == 0 {
			b.textValue = s
			return
		}
		if s == b.textValue {
			return
		}
		b.textValue = s
		r.surface.SetTextContent(b.node.Handle, s)
	})
}

func (r *Reconciler) renderComponent(n *vdom.Node, parent, after surface.Handle) surface.Handle {
	if n.Comp == nil {
		r.logger.Warn("reconcile: component node without definition", "code", luxerr.CodeUnknownKind)
		return r.renderAt(vdom.Comment(""), parent, after)
	}
	if n.Instance == nil || !n.Instance.Active() {
		n.Instance = vdom.NewInstance(n.Comp, r.logger)
	}
	inst := n.Instance
	inst.BindProps(n.Attrs)

	n.Mounted = true
	b := r.bind(n, parent)
	b.effect = reactive.NewEffect(func() reactive.Cleanup {
		next := inst.Render()
		reactive.Untracked(func() {
			if b.tree == nil {
				r.renderAt(next, b.parent, after)
			} else {
				start := time.Now()
				r.patch(b.tree, next, b.parent)
				r.instr.Patched(time.Since(start))
			}
			b.tree = next
			b.node.Children = []*vdom.Node{next}
		})
		return nil
	})

	if b.tree == nil {
		// The first render failed; keep a place for later renders.
		placeholder := vdom.Comment(n.Comp.Tag)
		r.renderAt(placeholder, parent, after)
		b.tree = placeholder
		n.Children = []*vdom.Node{placeholder}
	}
	return lastUnit(n)
}

func (r *Reconciler) renderBlock(n *vdom.Node, parent, after surface.Handle) surface.Handle {
	anchor := r.surface.CreateUnit(surface.UnitComment, "")
	n.Handle = anchor
	n.Mounted = true
	r.surface.InsertAfter(parent, after, anchor)
	if n.Block == nil {
		return anchor
	}

	b := r.bind(n, parent)
	primed := false
	b.effect = reactive.NewEffect(func() reactive.Cleanup {
		next := compact(n.Block.Gen())
		reactive.Untracked(func() {
			node := b.node
			if !primed {
				prev := anchor
				for _, c := range next {
					prev = r.renderAt(c, b.parent, prev)
				}
				primed = true
			} else {
				start := time.Now()
				r.patchChildren(node.Children, next, b.parent, node.Handle)
				r.instr.Patched(time.Since(start))
			}
			node.Children = next
		})
		return nil
	})
	return lastUnit(n)
}

// compact drops nil entries.
func compact(nodes []*vdom.Node) []*vdom.Node {
	for _, n := range nodes {
		if n == nil {
			out := make([]*vdom.Node, 0, len(nodes))
			for _, n := range nodes {
				if n != nil {
					out = append(out, n)
				}
			}
			return out
		}
	}
	return nodes
}
