package surface

import (
	"encoding/json"
	"sort"
	"strings"
)

// HTML serializes the children of the root. Attributes are written in
// name order so the output is stable.
func (m *Memory) HTML() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var b strings.Builder
	for _, c := range m.root.children {
		writeHTML(&b, c)
	}
	return b.String()
}

// UnitHTML serializes h and its subtree.
func (m *Memory) UnitHTML(h Handle) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[h]
	if !ok {
		return ""
	}
	var b strings.Builder
	writeHTML(&b, u)
	return b.String()
}

func writeHTML(b *strings.Builder, u *unit) {
	switch u.kind {
	case UnitText:
		b.WriteString(escapeText(u.text))
	case UnitComment:
		b.WriteString("<!--")
		b.WriteString(u.text)
		b.WriteString("-->")
	case UnitElement:
		b.WriteByte('<')
		b.WriteString(u.tag)
		for _, name := range sortedKeys(u.attrs) {
			b.WriteByte(' ')
			b.WriteString(name)
			if v := u.attrs[name]; v != "" {
				b.WriteString(`="`)
				b.WriteString(escapeAttr(v))
				b.WriteByte('"')
			}
		}
		b.WriteByte('>')
		if isVoidElement(u.tag) {
			return
		}
		for _, c := range u.children {
			writeHTML(b, c)
		}
		b.WriteString("</")
		b.WriteString(u.tag)
		b.WriteByte('>')
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SnapshotNode is a serializable copy of a unit and its subtree.
type SnapshotNode struct {
	Handle   Handle            `json:"h"`
	Kind     UnitKind          `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Events   []string          `json:"events,omitempty"`
	Children []*SnapshotNode   `json:"children,omitempty"`
}

// Snapshot copies the tree under the root.
func (m *Memory) Snapshot() *SnapshotNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.root)
}

func snapshot(u *unit) *SnapshotNode {
	n := &SnapshotNode{Handle: u.handle, Kind: u.kind, Tag: u.tag, Text: u.text}
	if len(u.attrs) > 0 {
		n.Attrs = make(map[string]string, len(u.attrs))
		for k, v := range u.attrs {
			n.Attrs[k] = v
		}
	}
	for name := range u.listeners {
		n.Events = append(n.Events, name)
	}
	sort.Strings(n.Events)
	for _, c := range u.children {
		n.Children = append(n.Children, snapshot(c))
	}
	return n
}

// SnapshotAt copies the tree under the root together with the number of
// ops recorded so far, read atomically.
func (m *Memory) SnapshotAt() (*SnapshotNode, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.root), len(m.ops)
}

// SnapshotJSON returns the snapshot encoded as JSON.
func (m *Memory) SnapshotJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}
