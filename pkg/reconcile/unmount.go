package reconcile

import (
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

// unmount tears down n. Display units are removed only when detach is
// set; units inside a removed element go with it. With keepAnchor the
// first unit of n stays on the surface and is returned so the caller can
// mount a replacement next to it.
func (r *Reconciler) unmount(n *vdom.Node, keepAnchor, detach bool) surface.Handle {
	if n == nil || !n.Mounted {
		return 0
	}
	n.Mounted = false
	if b, ok := r.bindings[n]; ok {
		delete(r.bindings, n)
		b.dispose()
	}

	switch n.Kind {
	case vdom.KindComponent:
		var anchor surface.Handle
		for i, c := range n.Children {
			if i == 0 {
				anchor = r.unmount(c, keepAnchor, detach)
				continue
			}
			r.unmount(c, false, detach)
		}
		n.Children = nil
		if n.Instance != nil {
			n.Instance.Dispose()
			n.Instance = nil
		}
		return anchor

	case vdom.KindBlock:
		for _, c := range n.Children {
			r.unmount(c, false, detach)
		}
		n.Children = nil
		return r.release(n.Handle, keepAnchor, detach)

	case vdom.KindElement:
		for _, c := range n.Children {
			r.unmount(c, false, false)
		}
		return r.release(n.Handle, keepAnchor, detach)

	default:
		return r.release(n.Handle, keepAnchor, detach)
	}
}

func (r *Reconciler) release(h surface.Handle, keep, detach bool) surface.Handle {
	if keep {
		return h
	}
	if detach && h != 0 {
		r.surface.RemoveUnit(h)
	}
	return 0
}
