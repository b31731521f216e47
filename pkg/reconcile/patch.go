package reconcile

import (
	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

func (r *Reconciler) patch(old, new *vdom.Node, parent surface.Handle) {
	switch {
	case old == new:
		return
	case old == nil:
		r.renderAt(new, parent, 0)
		return
	case new == nil:
		r.unmount(old, false, true)
		return
	}
	if !old.Mounted {
		r.logger.Warn("reconcile: patching a node that is not mounted, skipping",
			"code", luxerr.CodeMissingHandle, "kind", old.Kind.String(), "error", ErrMissingHandle)
		return
	}
	if old.Kind != new.Kind {
		r.replace(old, new, parent)
		return
	}

	switch new.Kind {
	case vdom.KindComment:
		r.transfer(old, new, parent)
		if old.Text != new.Text {
			r.surface.SetTextContent(new.Handle, new.Text)
		}

	case vdom.KindText:
		r.patchText(old, new, parent)

	case vdom.KindElement:
		if !vdom.SameTag(old.Tag, new.Tag) {
			r.replace(old, new, parent)
			return
		}
		r.patchElement(old, new, parent)

	case vdom.KindComponent:
		if old.Comp != new.Comp || new.Instance != nil && new.Instance != old.Instance {
			r.replace(old, new, parent)
			return
		}
		r.transfer(old, new, parent)
		new.Instance = old.Instance
		new.Children = old.Children
		old.Children = nil
		old.Instance = nil
		if new.Instance != nil {
			new.Instance.BindProps(new.Attrs)
		}

	case vdom.KindBlock:
		if old.Block != new.Block {
			r.replace(old, new, parent)
			return
		}
		r.transfer(old, new, parent)
		new.Children = old.Children
		old.Children = nil

	default:
		r.logger.Warn("reconcile: skipping node", "code", luxerr.CodeUnknownKind,
			"kind", new.Kind.String(), "error", ErrUnknownKind)
	}
}

func (r *Reconciler) patchText(old, new *vdom.Node, parent surface.Handle) {
	if old.Value == nil && new.Value == nil {
		r.transfer(old, new, parent)
		if old.Text != new.Text {
			r.surface.SetTextContent(new.Handle, new.Text)
		}
		return
	}

	r.transfer(old, new, parent)
	b := r.bind(new, parent)
	if old.Value == nil {
		// The unit holds static text.
		b.textValue = old.Text
	}
	if b.text != nil {
		b.text.Dispose()
		b.text = nil
	}
	if new.Value != nil {
		b.text = r.watchText(new.Value, b)
		return
	}
	if b.textValue != new.Text {
		r.surface.SetTextContent(new.Handle, new.Text)
	}
	delete(r.bindings, new)
}

func (r *Reconciler) patchElement(old, new *vdom.Node, parent surface.Handle) {
	if r.staticFastPath && old.Static && new.Static && old.Fingerprint() == new.Fingerprint() {
		r.transfer(old, new, parent)
		new.Children = old.Children
		return
	}

	r.transfer(old, new, parent)
	b := r.bind(new, parent)
	r.applyAttrs(new.Handle, b, new.Attrs)
	r.patchChildren(old.Children, new.Children, new.Handle, 0)
}

// replace unmounts old and mounts new in its place.
func (r *Reconciler) replace(old, new *vdom.Node, parent surface.Handle) {
	anchor := r.unmount(old, true, true)
	if anchor == 0 {
		r.logger.Warn("reconcile: replaced node had no display unit",
			"code", luxerr.CodeMissingHandle, "kind", old.Kind.String(), "error", ErrMissingHandle)
		r.renderAt(new, parent, 0)
		return
	}
	r.renderAt(new, parent, anchor)
	r.surface.RemoveUnit(anchor)
}
