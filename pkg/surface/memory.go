package surface

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	luxerr "github.com/vango-dev/lux/internal/errors"
)

// unit is one display unit held by Memory.
type unit struct {
	handle    Handle
	kind      UnitKind
	tag       string
	text      string
	attrs     map[string]string
	parent    *unit
	children  []*unit
	listeners map[string]Listener
}

func (u *unit) indexOf(child *unit) int {
	for i, c := range u.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (u *unit) detach() {
	if u.parent == nil {
		return
	}
	p := u.parent
	if i := p.indexOf(u); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	u.parent = nil
}

// Memory is a Surface kept in memory. It records every mutation.
// Memory is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	units  map[Handle]*unit
	root   *unit
	last   Handle
	ops    []Op
	total  int
	record bool
	logger *slog.Logger
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithLogger sets the logger used to report invalid handles.
func WithLogger(l *slog.Logger) MemoryOption {
	return func(m *Memory) { m.logger = l }
}

// WithoutRecording disables the op log.
func WithoutRecording() MemoryOption {
	return func(m *Memory) { m.record = false }
}

// NewMemory creates an empty surface with a root element.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		units:  make(map[Handle]*unit),
		record: true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.root = m.newUnit(UnitElement, "#root")
	return m
}

func (m *Memory) newUnit(kind UnitKind, data string) *unit {
	m.last++
	u := &unit{handle: m.last, kind: kind}
	if kind == UnitElement {
		u.tag = data
		u.attrs = make(map[string]string)
	} else {
		u.text = data
	}
	m.units[u.handle] = u
	return u
}

func (m *Memory) emit(op Op) {
	m.total++
	if m.record {
		m.ops = append(m.ops, op)
	}
}

// lookup returns the unit for h, logging a missing handle.
func (m *Memory) lookup(h Handle, op OpKind) *unit {
	u, ok := m.units[h]
	if !ok {
		m.logger.Warn("surface: unknown handle",
			"code", luxerr.CodeMissingHandle, "handle", uint64(h), "op", op.String())
	}
	return u
}

// Root implements Surface.
func (m *Memory) Root() Handle {
	return m.root.handle
}

// CreateUnit implements Surface.
func (m *Memory) CreateUnit(kind UnitKind, data string) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.newUnit(kind, data)
	m.emit(Op{Kind: OpCreate, Handle: u.handle, Unit: kind, Value: data})
	return u.handle
}

// SetAttribute implements Surface.
func (m *Memory) SetAttribute(h Handle, name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.lookup(h, OpSetAttr)
	if u == nil || u.kind != UnitElement {
		return
	}
	u.attrs[name] = value
	m.emit(Op{Kind: OpSetAttr, Handle: h, Name: name, Value: value})
}

// RemoveAttribute implements Surface.
func (m *Memory) RemoveAttribute(h Handle, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.lookup(h, OpRemoveAttr)
	if u == nil || u.kind != UnitElement {
		return
	}
	delete(u.attrs, name)
	m.emit(Op{Kind: OpRemoveAttr, Handle: h, Name: name})
}

// InsertAfter implements Surface.
func (m *Memory) InsertAfter(parent, ref, h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.lookup(parent, OpInsert)
	u := m.lookup(h, OpInsert)
	if p == nil || u == nil || p.kind != UnitElement {
		return
	}

	kind := OpInsert
	if u.parent != nil {
		kind = OpMove
	}
	u.detach()

	pos := 0
	if ref != 0 {
		r := m.lookup(ref, kind)
		if r == nil || r.parent != p {
			m.logger.Warn("surface: insert anchor is not a child of parent",
				"code", luxerr.CodeMissingHandle, "parent", uint64(parent), "ref", uint64(ref))
			pos = len(p.children)
		} else {
			pos = p.indexOf(r) + 1
		}
	}

	p.children = append(p.children, nil)
	copy(p.children[pos+1:], p.children[pos:])
	p.children[pos] = u
	u.parent = p

	m.emit(Op{Kind: kind, Handle: h, Parent: parent, Ref: ref})
}

// RemoveUnit implements Surface.
func (m *Memory) RemoveUnit(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.lookup(h, OpRemove)
	if u == nil || u == m.root {
		return
	}
	u.detach()
	m.discard(u)
	m.emit(Op{Kind: OpRemove, Handle: h})
}

func (m *Memory) discard(u *unit) {
	for _, c := range u.children {
		m.discard(c)
	}
	delete(m.units, u.handle)
}

// SetTextContent implements Surface. On an element it replaces the
// children with a single text unit.
func (m *Memory) SetTextContent(h Handle, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.lookup(h, OpSetText)
	if u == nil {
		return
	}
	if u.kind == UnitElement {
		for _, c := range u.children {
			c.parent = nil
			m.discard(c)
		}
		u.children = nil
		if text != "" {
			t := m.newUnit(UnitText, text)
			t.parent = u
			u.children = []*unit{t}
		}
	} else {
		u.text = text
	}
	m.emit(Op{Kind: OpSetText, Handle: h, Value: text})
}

// Listen implements Surface.
func (m *Memory) Listen(h Handle, event string, fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.lookup(h, OpListen)
	if u == nil {
		return
	}
	if u.listeners == nil {
		u.listeners = make(map[string]Listener)
	}
	u.listeners[event] = fn
	m.emit(Op{Kind: OpListen, Handle: h, Name: event})
}

// Unlisten implements Surface.
func (m *Memory) Unlisten(h Handle, event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.lookup(h, OpUnlisten)
	if u == nil {
		return
	}
	delete(u.listeners, event)
	m.emit(Op{Kind: OpUnlisten, Handle: h, Name: event})
}

// Dispatch delivers e to the listener registered on e.Target for e.Type.
// It reports whether a listener was found. The listener runs without the
// surface lock held.
func (m *Memory) Dispatch(e Event) bool {
	m.mu.Lock()
	var fn Listener
	if u, ok := m.units[e.Target]; ok {
		fn = u.listeners[e.Type]
	}
	m.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(e)
	return true
}

// Ops returns a copy of the recorded mutations.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.ops...)
}

// OpsSince returns the mutations recorded after the first n.
func (m *Memory) OpsSince(n int) []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n >= len(m.ops) {
		return nil
	}
	return append([]Op(nil), m.ops[n:]...)
}

// ResetOps clears the op log.
func (m *Memory) ResetOps() {
	m.mu.Lock()
	m.ops = nil
	m.mu.Unlock()
}

// DropOps removes the first n recorded ops. Ops recorded after them are
// kept.
func (m *Memory) DropOps(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n >= len(m.ops) {
		m.ops = m.ops[:0]
		return
	}
	if n > 0 {
		m.ops = append(m.ops[:0], m.ops[n:]...)
	}
}

// Total returns the number of ops emitted since the surface was created,
// including ops that were dropped, reset or not recorded.
func (m *Memory) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Count returns how many recorded ops have one of the given kinds, or
// all ops when no kind is given.
func (m *Memory) Count(kinds ...OpKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(kinds) == 0 {
		return len(m.ops)
	}
	n := 0
	for _, op := range m.ops {
		for _, k := range kinds {
			if op.Kind == k {
				n++
				break
			}
		}
	}
	return n
}

// Units returns the number of live units, the root included.
func (m *Memory) Units() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.units)
}

// Children returns the handles of the children of h.
func (m *Memory) Children(h Handle) []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[h]
	if !ok {
		return nil
	}
	out := make([]Handle, len(u.children))
	for i, c := range u.children {
		out[i] = c.handle
	}
	return out
}

// Parent returns the parent of h, or zero.
func (m *Memory) Parent(h Handle) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.units[h]; ok && u.parent != nil {
		return u.parent.handle
	}
	return 0
}

// Attr returns the value of an attribute of h.
func (m *Memory) Attr(h Handle, name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[h]
	if !ok || u.attrs == nil {
		return "", false
	}
	v, ok := u.attrs[name]
	return v, ok
}

// Text returns the text content of h.
func (m *Memory) Text(h Handle) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[h]
	if !ok {
		return ""
	}
	var b strings.Builder
	textContent(&b, u)
	return b.String()
}

func textContent(b *strings.Builder, u *unit) {
	switch u.kind {
	case UnitText:
		b.WriteString(u.text)
	case UnitElement:
		for _, c := range u.children {
			textContent(b, c)
		}
	}
}

// Find returns the first attached element, in document order, whose
// attribute name equals value.
func (m *Memory) Find(name, value string) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found Handle
	var walk func(u *unit) bool
	walk = func(u *unit) bool {
		if u.kind == UnitElement && u != m.root {
			if v, ok := u.attrs[name]; ok && v == value {
				found = u.handle
				return true
			}
		}
		for _, c := range u.children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(m.root)
	return found
}

// Listeners returns the sorted event types h listens to.
func (m *Memory) Listeners(h Handle) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[h]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(u.listeners))
	for name := range u.listeners {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
