package vdom

import (
	"log/slog"
	"sync"

	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/reactive"
)

// RenderFunc renders a component instance. It is the output of the
// template compiler, or written by hand.
type RenderFunc func(ctx *Context) *Node

// Method is a component method callable through Context.Call.
type Method func(ctx *Context, args ...any) any

// Definition describes a component.
type Definition struct {
	// Tag names the component in logs.
	Tag string

	// Props lists the accepted prop names. Other props are ignored.
	Props []string

	// State returns the initial state of a new instance.
	State func() map[string]any

	Methods map[string]Method

	Render RenderFunc
}

func (d *Definition) hasProp(name string) bool {
	for _, p := range d.Props {
		if p == name {
			return true
		}
	}
	return false
}

// Comp creates a component node. Arguments are the same as for El; attributes
// become props. Prefer Context.Component inside render functions.
func Comp(def *Definition, args ...any) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindComponent, Comp: def}
	attrs := &Attrs{}
	apply(n, attrs, args, true)
	n.Children = nil
	if !attrs.Empty() {
		n.Attrs = attrs
	}
	return n
}

// Instance is a live component.
type Instance struct {
	ID  uint64
	Def *Definition

	// State holds the instance state created by Def.State.
	State *reactive.State

	// Props holds the prop values passed by the parent.
	Props *reactive.State

	ctx    *Context
	logger *slog.Logger

	mu       sync.Mutex
	watchers map[string]*reactive.Watcher[any]
	active   bool
}

// NewInstance creates an instance of def. logger may be nil.
func NewInstance(def *Definition, logger *slog.Logger) *Instance {
	if logger == nil {
		logger = slog.Default()
	}
	var initial map[string]any
	if def.State != nil {
		initial = def.State()
	}
	props := make(map[string]any, len(def.Props))
	for _, name := range def.Props {
		props[name] = nil
	}

	inst := &Instance{
		ID:       nextNodeID(),
		Def:      def,
		State:    reactive.NewState(initial),
		Props:    reactive.NewState(props),
		logger:   logger.With("component", def.Tag),
		watchers: make(map[string]*reactive.Watcher[any]),
		active:   true,
	}
	inst.ctx = newContext(inst)
	return inst
}

// Context returns the root context of the instance.
func (i *Instance) Context() *Context {
	return i.ctx
}

// Active reports whether the instance has not been disposed.
func (i *Instance) Active() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

// BindProps applies the props described by attrs. Static props
// (attrs.Props) are written into Props; dynamic props are watched and
// written on change.
// Watchers of a previous call are replaced. Unknown props are logged and
// ignored.
func (i *Instance) BindProps(attrs *Attrs) {
	i.mu.Lock()
	old := i.watchers
	i.watchers = make(map[string]*reactive.Watcher[any])
	i.mu.Unlock()
	for _, w := range old {
		w.Dispose()
	}
	if attrs == nil {
		return
	}
	if len(attrs.Events) > 0 {
		i.logger.Warn("vdom: events on a component are ignored", "code", luxerr.CodeComponentEvents)
	}

	reactive.Batch(func() {
		for name, value := range attrs.Props {
			if !i.Def.hasProp(name) {
				i.unknownProp(name)
				continue
			}
			i.Props.Set(name, value)
		}
	})

	for name, r := range attrs.Dynamics {
		if !i.Def.hasProp(name) {
			i.unknownProp(name)
			continue
		}
		name := name
		var w *reactive.Watcher[any]
		reactive.Untracked(func() {
			w = reactive.WatchReader(r, func(v any) {
				if i.Active() {
					i.Props.Set(name, v)
				}
			})
		})
		i.mu.Lock()
		i.watchers[name] = w
		i.mu.Unlock()
	}
}

func (i *Instance) unknownProp(name string) {
	i.logger.Warn("vdom: property is not declared by the component, ignoring",
		"code", luxerr.CodeUnknownProp, "prop", name)
}

// Render runs the definition's render function. Child components and
// blocks created through the context during the call keep their identity
// across calls.
func (i *Instance) Render() *Node {
	if i.Def.Render == nil {
		return Comment(i.Def.Tag)
	}
	i.ctx.beginRender()
	defer i.ctx.endRender()
	n := i.Def.Render(i.ctx)
	if n == nil {
		return Comment("")
	}
	return n
}

// Dispose deactivates the instance and releases its reactive state.
func (i *Instance) Dispose() {
	i.mu.Lock()
	if !i.active {
		i.mu.Unlock()
		return
	}
	i.active = false
	watchers := i.watchers
	i.watchers = nil
	i.mu.Unlock()

	for _, w := range watchers {
		w.Dispose()
	}
	i.ctx.dispose()
	i.State.Dispose()
	i.Props.Dispose()
}
