package vdom

import (
	"hash/fnv"
	"io"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindComment               // Comment, also used as a placeholder
	KindComponent             // Component instance
	KindBlock                 // Reactive region
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindComponent:
		return "Component"
	case KindBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

var nodeIDCounter uint64

func nextNodeID() uint64 {
	return atomic.AddUint64(&nodeIDCounter, 1)
}

// Node is one node of a tree description.
type Node struct {
	ID   uint64
	Kind Kind

	Tag  string // KindElement
	Text string // KindText, KindComment

	// Value binds the content of a text node to a reactive value.
	Value reactive.Reader

	// Attrs holds the attributes of an element, or the props of a component.
	Attrs *Attrs

	// Children of an element. For components and blocks the reconciler
	// stores the mounted output here.
	Children []*Node

	// Key identifies the node among its siblings.
	Key string

	Comp     *Definition // KindComponent
	Instance *Instance   // KindComponent, set when mounted or cached
	Block    Block       // KindBlock

	// Static is set by the constructors when the subtree holds no
	// reactive parts, no events, no components and no blocks.
	Static bool

	// Handle is the display unit of the node, assigned by the reconciler.
	// For blocks it is the anchor comment.
	Handle surface.Handle

	// Mounted is set by the reconciler while the node is live.
	Mounted bool

	fingerprint uint64
}

// IsKeyed reports whether the node carries a key.
func (n *Node) IsKeyed() bool {
	return n != nil && n.Key != ""
}

// SameTag reports whether two element tags match, ignoring case.
func SameTag(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Fingerprint returns a hash of a static subtree: two static nodes with
// the same fingerprint describe the same output. It returns 0 for nodes
// that are not static.
func (n *Node) Fingerprint() uint64 {
	if n == nil || !n.Static {
		return 0
	}
	if n.fingerprint != 0 {
		return n.fingerprint
	}
	h := fnv.New64a()
	n.hash(h)
	n.fingerprint = h.Sum64() | 1
	return n.fingerprint
}

func (n *Node) hash(w io.Writer) {
	io.WriteString(w, n.Kind.String())
	io.WriteString(w, "\x00")
	switch n.Kind {
	case KindText, KindComment:
		io.WriteString(w, n.Text)
	case KindElement:
		io.WriteString(w, strings.ToLower(n.Tag))
		if n.Attrs != nil {
			statics, _ := n.Attrs.Effective()
			names := make([]string, 0, len(statics))
			for name := range statics {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				io.WriteString(w, "\x01"+name+"="+statics[name])
			}
		}
		for _, c := range n.Children {
			io.WriteString(w, "\x02")
			c.hash(w)
		}
		io.WriteString(w, "\x03")
	}
}

// Clone returns a deep copy of the description. Mount state (handle,
// instance, mounted flag) is not copied.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:     nextNodeID(),
		Kind:   n.Kind,
		Tag:    n.Tag,
		Text:   n.Text,
		Value:  n.Value,
		Attrs:  n.Attrs.Clone(),
		Key:    n.Key,
		Comp:   n.Comp,
		Block:  n.Block,
		Static: n.Static,
	}
	if n.Kind == KindElement && len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Walk calls fn for n and every descendant in document order.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
