package vdom

import (
	"fmt"

	"github.com/vango-dev/lux/pkg/reactive"
)

// AttrArg sets one attribute. A reactive.Reader value makes it dynamic.
type AttrArg struct {
	Name  string
	Value any
}

// EventArg registers an event handler.
type EventArg struct {
	Event   string
	Handler Handler
}

// KeyArg sets the node key.
type KeyArg string

type classArg struct{ value any }

type styleArg struct{ value any }

// Attr creates an attribute argument.
func Attr(name string, value any) AttrArg {
	return AttrArg{Name: name, Value: value}
}

// Prop is Attr for component props.
func Prop(name string, value any) AttrArg {
	return AttrArg{Name: name, Value: value}
}

// On creates an event handler argument.
func On(event string, h Handler) EventArg {
	return EventArg{Event: event, Handler: h}
}

// Key creates a key argument.
func Key(k string) KeyArg {
	return KeyArg(k)
}

// Class sets the class of an element: a string, a []string, a
// map[string]bool, or a reactive.Reader yielding one of those.
func Class(v any) any {
	return classArg{v}
}

// Style sets the style of an element: a string, a map, or a
// reactive.Reader yielding one of those.
func Style(v any) any {
	return styleArg{v}
}

// El creates an element node.
// Arguments can be: nil, AttrArg, []AttrArg, EventArg, KeyArg, Class(...),
// Style(...), *Node, []*Node, string (text child) or reactive.Reader
// (bound text child).
func El(tag string, args ...any) *Node {
	n := &Node{ID: nextNodeID(), Kind: KindElement, Tag: tag}
	attrs := &Attrs{}
	apply(n, attrs, args, false)
	if !attrs.Empty() {
		n.Attrs = attrs
	}
	n.Static = computeStatic(n)
	return n
}

func apply(n *Node, attrs *Attrs, args []any, component bool) {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional arguments)
			continue

		case AttrArg:
			applyAttr(n, attrs, v, component)

		case []AttrArg:
			for _, a := range v {
				applyAttr(n, attrs, a, component)
			}

		case EventArg:
			if v.Event != "" && v.Handler != nil {
				attrs.setEvent(v.Event, v.Handler)
			}

		case KeyArg:
			n.Key = string(v)

		case classArg:
			attrs.Classes = v.value

		case styleArg:
			attrs.Styles = v.value

		case *Node:
			if v != nil {
				n.Children = append(n.Children, v)
			}

		case []*Node:
			for _, c := range v {
				if c != nil {
					n.Children = append(n.Children, c)
				}
			}

		case string:
			n.Children = append(n.Children, Text(v))

		case reactive.Reader:
			n.Children = append(n.Children, BindText(v))

		default:
			n.Children = append(n.Children, Text(fmt.Sprint(v)))
		}
	}
}

func applyAttr(n *Node, attrs *Attrs, a AttrArg, component bool) {
	if a.Name == "" {
		return
	}
	if a.Name == "key" {
		if s, ok := a.Value.(string); ok {
			n.Key = s
			return
		}
	}
	if r, ok := a.Value.(reactive.Reader); ok {
		attrs.setDynamic(a.Name, r)
		delete(attrs.Props, a.Name)
		return
	}
	if component {
		if attrs.Props == nil {
			attrs.Props = make(map[string]any)
		}
		attrs.Props[a.Name] = a.Value
		delete(attrs.Dynamics, a.Name)
		return
	}
	if s, ok := AttrValue(a.Value); ok {
		attrs.setStatic(a.Name, s)
	} else {
		delete(attrs.Statics, a.Name)
		delete(attrs.Dynamics, a.Name)
	}
}

func computeStatic(n *Node) bool {
	if n.Attrs != nil {
		if len(n.Attrs.Dynamics) > 0 || len(n.Attrs.Events) > 0 {
			return false
		}
		if _, ok := n.Attrs.Classes.(reactive.Reader); ok {
			return false
		}
		if _, ok := n.Attrs.Styles.(reactive.Reader); ok {
			return false
		}
	}
	for _, c := range n.Children {
		if !c.Static {
			return false
		}
	}
	return true
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{ID: nextNodeID(), Kind: KindText, Text: content, Static: true}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// BindText creates a text node whose content follows r.
func BindText(r reactive.Reader) *Node {
	return &Node{ID: nextNodeID(), Kind: KindText, Value: r}
}

// Comment creates a comment node.
func Comment(content string) *Node {
	return &Node{ID: nextNodeID(), Kind: KindComment, Text: content, Static: true}
}

// Div creates a <div> element.
func Div(args ...any) *Node { return El("div", args...) }

// Span creates a <span> element.
func Span(args ...any) *Node { return El("span", args...) }

// P creates a <p> element.
func P(args ...any) *Node { return El("p", args...) }

// Ul creates a <ul> element.
func Ul(args ...any) *Node { return El("ul", args...) }

// Li creates a <li> element.
func Li(args ...any) *Node { return El("li", args...) }

// Button creates a <button> element.
func Button(args ...any) *Node { return El("button", args...) }

// Input creates an <input> element.
func Input(args ...any) *Node { return El("input", args...) }
