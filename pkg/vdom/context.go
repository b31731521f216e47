package vdom

import (
	"fmt"
	"log/slog"

	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface"
)

// Context is passed to render functions. It resolves names against loop
// variables, props and state, and keeps child components and blocks
// stable across re-renders of the same instance.
type Context struct {
	instance *Instance
	parent   *Context

	name  string
	value any

	// Render-pass bookkeeping, root context only.
	rendering bool
	slot      int
	slots     []slotEntry
	keyed     map[string]*Node
	seenKeys  map[string]bool
}

type slotEntry struct {
	kind    string
	value   any
	dispose func()
}

func newContext(inst *Instance) *Context {
	return &Context{instance: inst, keyed: make(map[string]*Node)}
}

func (c *Context) root() *Context {
	for c.parent != nil {
		c = c.parent
	}
	return c
}

// Instance returns the component instance the context renders.
func (c *Context) Instance() *Instance {
	return c.instance
}

// Logger returns the logger of the instance.
func (c *Context) Logger() *slog.Logger {
	return c.instance.logger
}

// State returns the instance state.
func (c *Context) State() *reactive.State {
	return c.instance.State
}

// Props returns the instance props.
func (c *Context) Props() *reactive.State {
	return c.instance.Props
}

// With returns a child context where name resolves to value.
func (c *Context) With(name string, value any) *Context {
	return &Context{instance: c.instance, parent: c, name: name, value: value}
}

// Lookup resolves name against loop variables, then props, then state.
// Reads of props and state are tracked.
func (c *Context) Lookup(name string) (any, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.parent != nil && ctx.name == name {
			return ctx.value, true
		}
	}
	if c.instance.Def.hasProp(name) {
		return c.instance.Props.Lookup(name)
	}
	return c.instance.State.Lookup(name)
}

// Get is Lookup without the presence flag.
func (c *Context) Get(name string) any {
	v, _ := c.Lookup(name)
	return v
}

// Set writes name into the instance state.
func (c *Context) Set(name string, v any) error {
	return c.instance.State.Set(name, v)
}

// Call invokes a method of the definition.
func (c *Context) Call(name string, args ...any) (any, error) {
	m, ok := c.instance.Def.Methods[name]
	if !ok {
		err := luxerr.New(luxerr.CodeUnknownMethod).
			WithDetail(fmt.Sprintf("component %q has no method %q", c.instance.Def.Tag, name))
		c.Logger().Warn("vdom: unknown method", "code", luxerr.CodeUnknownMethod, "method", name)
		return nil, err
	}
	return m(c, args...), nil
}

// Handler returns an event handler that calls the named method with the
// event as its only argument.
func (c *Context) Handler(method string) Handler {
	return func(e surface.Event) {
		_, _ = c.Call(method, e)
	}
}

// Component creates a child component node. Within one render pass of
// the instance the same call site, or the same key, returns the same node
// with its props updated, so the child keeps its instance.
func (c *Context) Component(def *Definition, args ...any) *Node {
	n := Comp(def, args...)
	root := c.root()
	if !root.rendering || c.parent != nil {
		return n
	}

	var id string
	if n.Key != "" {
		id = "key:" + n.Key
	} else {
		id = fmt.Sprintf("slot:%d", root.slot)
		root.slot++
	}
	root.seenKeys[id] = true

	if cached, ok := root.keyed[id]; ok && cached.Comp == def {
		cached.Attrs = n.Attrs
		if cached.Instance != nil && cached.Mounted {
			cached.Instance.BindProps(n.Attrs)
		}
		return cached
	}
	root.keyed[id] = n
	return n
}

// cached returns the value created for the current call site, creating it
// with create on the first render pass or when the call site now creates
// something of a different kind. Outside a render pass, or in a loop
// context, create is called every time.
func (c *Context) cached(kind string, create func() (any, func())) any {
	root := c.root()
	if !root.rendering || c.parent != nil {
		v, _ := create()
		return v
	}
	i := root.slot
	root.slot++
	for len(root.slots) <= i {
		root.slots = append(root.slots, slotEntry{})
	}
	if e := root.slots[i]; e.value != nil && e.kind == kind {
		return e.value
	} else if e.dispose != nil {
		e.dispose()
	}
	v, dispose := create()
	root.slots[i] = slotEntry{kind: kind, value: v, dispose: dispose}
	return v
}

func (c *Context) beginRender() {
	c.rendering = true
	c.slot = 0
	c.seenKeys = make(map[string]bool)
}

func (c *Context) endRender() {
	c.rendering = false
	for id := range c.keyed {
		if !c.seenKeys[id] {
			delete(c.keyed, id)
		}
	}
	c.seenKeys = nil
}

func (c *Context) dispose() {
	for _, s := range c.slots {
		if s.dispose != nil {
			s.dispose()
		}
	}
	c.slots = nil
	c.keyed = make(map[string]*Node)
}
