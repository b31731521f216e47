package vdom

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface"
)

// Handler handles an event raised on an element.
type Handler func(e surface.Event)

// Attrs holds the attributes of a node, partitioned by how they are
// applied.
type Attrs struct {
	// Statics are written once per change of the description.
	Statics map[string]string

	// Props are the raw static values passed to a component.
	Props map[string]any

	// Dynamics are bound to reactive values.
	Dynamics map[string]reactive.Reader

	// Events map event types ("click") to handlers.
	Events map[string]Handler

	// Classes and Styles hold the raw class and style values. A Reader is
	// bound like a dynamic attribute; anything else is rendered to a string
	// by ClassString or StyleString.
	Classes any
	Styles  any
}

func (a *Attrs) setStatic(name, value string) {
	if a.Statics == nil {
		a.Statics = make(map[string]string)
	}
	a.Statics[name] = value
	delete(a.Dynamics, name)
}

func (a *Attrs) setDynamic(name string, r reactive.Reader) {
	if a.Dynamics == nil {
		a.Dynamics = make(map[string]reactive.Reader)
	}
	a.Dynamics[name] = r
	delete(a.Statics, name)
}

func (a *Attrs) setEvent(name string, h Handler) {
	if a.Events == nil {
		a.Events = make(map[string]Handler)
	}
	a.Events[name] = h
}

// Empty reports whether no attribute, class, style or event is set.
func (a *Attrs) Empty() bool {
	return a == nil || (len(a.Statics) == 0 && len(a.Props) == 0 && len(a.Dynamics) == 0 &&
		len(a.Events) == 0 && a.Classes == nil && a.Styles == nil)
}

// Effective returns the attributes to apply, with classes and styles
// folded in as "class" and "style". Every source of a class is kept: a
// "class" attribute, static or reactive, is joined with the classes set
// by Class, and likewise for styles. When any source is reactive the
// joined value is reactive.
func (a *Attrs) Effective() (statics map[string]string, dynamics map[string]reactive.Reader) {
	if a == nil {
		return nil, nil
	}
	statics = make(map[string]string, len(a.Statics)+2)
	for k, v := range a.Statics {
		statics[k] = v
	}
	dynamics = make(map[string]reactive.Reader, len(a.Dynamics)+2)
	for k, v := range a.Dynamics {
		dynamics[k] = v
	}

	fold := func(name, sep string, raw any, render func(any) string) {
		if raw == nil {
			return
		}
		attr := statics[name]
		dyn := dynamics[name]
		r, reactiveRaw := raw.(reactive.Reader)
		if !reactiveRaw && dyn == nil {
			statics[name] = joinNonEmpty(sep, attr, render(raw))
			return
		}
		delete(statics, name)
		dynamics[name] = reactive.ReaderFunc(func() any {
			base, v := attr, raw
			if dyn != nil {
				base = render(dyn.ReadAny())
			}
			if reactiveRaw {
				v = r.ReadAny()
			}
			return joinNonEmpty(sep, base, render(v))
		})
	}
	fold("class", " ", a.Classes, ClassString)
	fold("style", "; ", a.Styles, StyleString)
	return statics, dynamics
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// Clone returns a copy of the attribute maps. Readers and handlers are
// shared.
func (a *Attrs) Clone() *Attrs {
	if a == nil {
		return nil
	}
	c := &Attrs{Classes: a.Classes, Styles: a.Styles}
	if a.Statics != nil {
		c.Statics = make(map[string]string, len(a.Statics))
		for k, v := range a.Statics {
			c.Statics[k] = v
		}
	}
	if a.Props != nil {
		c.Props = make(map[string]any, len(a.Props))
		for k, v := range a.Props {
			c.Props[k] = v
		}
	}
	if a.Dynamics != nil {
		c.Dynamics = make(map[string]reactive.Reader, len(a.Dynamics))
		for k, v := range a.Dynamics {
			c.Dynamics[k] = v
		}
	}
	if a.Events != nil {
		c.Events = make(map[string]Handler, len(a.Events))
		for k, v := range a.Events {
			c.Events[k] = v
		}
	}
	return c
}

// AttrValue converts a value to its attribute string. It reports false
// when the attribute should be absent (nil or false).
func AttrValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return "", x
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

// ClassString renders a class value: a string, a []string, or a
// map[string]bool of class names to their enabled state.
func ClassString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		parts := make([]string, 0, len(x))
		for _, s := range x {
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]bool:
		names := make([]string, 0, len(x))
		for name, on := range x {
			if on && name != "" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return strings.Join(names, " ")
	default:
		s, _ := AttrValue(x)
		return s
	}
}

// StyleString renders a style value: a string, or a map of properties
// written in property order.
func StyleString(v any) string {
	var props map[string]string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case map[string]string:
		props = x
	case map[string]any:
		props = make(map[string]string, len(x))
		for k, val := range x {
			if s, ok := AttrValue(val); ok {
				props[k] = s
			}
		}
	default:
		s, _ := AttrValue(x)
		return s
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(props[name])
	}
	return b.String()
}
