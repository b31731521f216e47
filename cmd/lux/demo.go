package main

import (
	"math/rand"
	"strconv"

	"github.com/vango-dev/lux/pkg/bind"
	. "github.com/vango-dev/lux/pkg/vdom"
)

// demoCounter counts clicks. Its render reads no state; the texts are
// expression bindings and update on their own.
var demoCounter = &Definition{
	Tag:   "counter",
	Props: []string{"label"},
	State: func() map[string]any { return map[string]any{"count": 0} },
	Methods: map[string]Method{
		"inc": func(ctx *Context, _ ...any) any {
			n := ctx.Get("count").(int) + 1
			ctx.Set("count", n)
			return n
		},
		"dec": func(ctx *Context, _ ...any) any {
			n := ctx.Get("count").(int) - 1
			ctx.Set("count", n)
			return n
		},
	},
	Render: func(ctx *Context) *Node {
		label, err := bind.Text(ctx, `label + ": " + string(count)`)
		if err != nil {
			label = Text("")
		}
		doubled, err := bind.Text(ctx, `count * 2`)
		if err != nil {
			doubled = Text("")
		}
		return Div(Class("counter"),
			Button(On("click", ctx.Handler("dec")), "-"),
			Span(label),
			Button(On("click", ctx.Handler("inc")), "+"),
			Span(Class("doubled"), doubled),
		)
	},
}

// demoList is a keyed list that can be shuffled and grown.
var demoList = &Definition{
	Tag: "list",
	State: func() map[string]any {
		return map[string]any{"items": []string{"a", "b", "c", "d", "e"}, "next": 0}
	},
	Methods: map[string]Method{
		"shuffle": func(ctx *Context, _ ...any) any {
			items := append([]string(nil), ctx.Get("items").([]string)...)
			rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
			ctx.Set("items", items)
			return nil
		},
		"add": func(ctx *Context, _ ...any) any {
			n := ctx.Get("next").(int)
			items := append([]string(nil), ctx.Get("items").([]string)...)
			ctx.Set("items", append(items, "item-"+strconv.Itoa(n)))
			ctx.Set("next", n+1)
			return nil
		},
	},
	Render: func(ctx *Context) *Node {
		items := func() []string {
			v, _ := ctx.Get("items").([]string)
			return v
		}
		return Div(Class("list"),
			Button(On("click", ctx.Handler("shuffle")), "shuffle"),
			Button(On("click", ctx.Handler("add")), "add"),
			Ul(Each(ctx, "item", items,
				func(s string, _ int) string { return s },
				func(_ *Context, s string, _ int) *Node { return Li(s) },
			)),
		)
	},
}

// demoApp is the root of the served demo.
var demoApp = &Definition{
	Tag: "app",
	Render: func(ctx *Context) *Node {
		return Div(Attr("id", "app"),
			ctx.Component(demoCounter, Attr("label", "clicks")),
			ctx.Component(demoList),
		)
	},
}
