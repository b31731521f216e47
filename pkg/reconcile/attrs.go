package reconcile

import (
	"sort"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/vdom"
)

// writeAttr sets or removes one attribute, skipping the surface when the
// unit already holds the value.
func (r *Reconciler) writeAttr(h surface.Handle, b *binding, name, value string, present bool) {
	cur, had := b.values[name]
	if !present {
		if !had {
			return
		}
		delete(b.values, name)
		r.surface.RemoveAttribute(h, name)
		return
	}
	if had && cur == value {
		return
	}
	if b.values == nil {
		b.values = make(map[string]string)
	}
	b.values[name] = value
	r.surface.SetAttribute(h, name, value)
}

// applyAttrs brings the attributes and listeners of a unit in line with
// attrs. Dynamic attributes get fresh watchers; attributes no longer
// present are removed.
func (r *Reconciler) applyAttrs(h surface.Handle, b *binding, attrs *vdom.Attrs) {
	statics, dynamics := attrs.Effective()

	for name, w := range b.watchers {
		w.Dispose()
		delete(b.watchers, name)
	}

	for _, name := range sortedKeys(statics) {
		r.writeAttr(h, b, name, statics[name], true)
	}
	for _, name := range sortedKeys(dynamics) {
		name, src := name, dynamics[name]
		if b.watchers == nil {
			b.watchers = make(map[string]reactive.Subscriber)
		}
		b.watchers[name] = reactive.WatchReader(src, func(v any) {
			s, ok := vdom.AttrValue(v)
			r.writeAttr(h, b, name, s, ok)
		})
	}
	for _, name := range sortedKeys(b.values) {
		if _, ok := statics[name]; ok {
			continue
		}
		if _, ok := dynamics[name]; ok {
			continue
		}
		r.writeAttr(h, b, name, "", false)
	}

	var events map[string]vdom.Handler
	if attrs != nil {
		events = attrs.Events
	}
	r.applyEvents(h, b, events)
}

func (r *Reconciler) applyEvents(h surface.Handle, b *binding, events map[string]vdom.Handler) {
	for name, slot := range b.events {
		if fn, ok := events[name]; ok && fn != nil {
			slot.set(fn)
			continue
		}
		delete(b.events, name)
		r.surface.Unlisten(h, name)
	}
	for _, name := range sortedKeys(events) {
		fn := events[name]
		if fn == nil {
			continue
		}
		if _, ok := b.events[name]; ok {
			continue
		}
		slot := &eventSlot{handler: fn}
		if b.events == nil {
			b.events = make(map[string]*eventSlot)
		}
		b.events[name] = slot
		r.surface.Listen(h, name, slot.dispatch)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
