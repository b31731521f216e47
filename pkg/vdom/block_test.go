package vdom

import (
	"testing"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface"
)

func eventFor() surface.Event {
	return surface.Event{Type: "click"}
}

func TestConditionBlock(t *testing.T) {
	def := &Definition{Tag: "t", State: func() map[string]any { return map[string]any{"open": false} }}
	inst := NewInstance(def, nil)
	ctx := inst.Context()

	renders := 0
	panel := func(*Context) *Node { renders++; return Div("panel") }
	b := NewConditionBlock(ctx,
		Case(func(c *Context) bool { return c.Get("open") == true }, panel),
		Else(func(*Context) *Node { return P("closed") }),
	)

	out := b.Gen()
	if len(out) != 1 || out[0].Tag != "p" {
		t.Fatalf("expected else branch, got %+v", out)
	}

	inst.State.Set("open", true)
	first := b.Gen()[0]
	if first.Tag != "div" || b.Selected() != 0 {
		t.Fatalf("expected panel branch, got %+v", first)
	}

	inst.State.Set("open", false)
	b.Gen()
	inst.State.Set("open", true)
	if again := b.Gen()[0]; again != first {
		t.Error("branch output should be reused")
	}
	if renders != 1 {
		t.Errorf("expected 1 panel render, got %d", renders)
	}
}

func TestConditionBlockNoMatch(t *testing.T) {
	inst := NewInstance(&Definition{Tag: "t"}, nil)
	b := NewConditionBlock(inst.Context(), Case(func(*Context) bool { return false }, nil))
	out := b.Gen()
	if len(out) != 1 || out[0].Kind != KindComment {
		t.Errorf("expected placeholder comment, got %+v", out)
	}
	if b.Gen()[0] != out[0] {
		t.Error("placeholder should be stable")
	}
}

func TestLoopBlock(t *testing.T) {
	inst := NewInstance(&Definition{Tag: "t"}, nil)
	items := reactive.NewRef([]string{"a", "b", "c"})

	bodies := 0
	b := NewLoopBlock(inst.Context(), "item", items.Get,
		func(s string, _ int) string { return s },
		func(c *Context, s string, _ int) *Node {
			bodies++
			return Li(Textf("%v", c.Get("item")))
		},
	)

	out := b.Gen()
	if len(out) != 3 || out[0].Key != "a" || out[0].Children[0].Text != "a" {
		t.Fatalf("unexpected output %+v", out)
	}

	items.Set([]string{"c", "a", "b"})
	again := b.Gen()
	if again[0] != out[2] || again[1] != out[0] {
		t.Error("nodes should be reused by key")
	}
	if bodies != 3 {
		t.Errorf("expected 3 body runs, got %d", bodies)
	}
}

func TestLoopBlockDuplicateKeys(t *testing.T) {
	inst := NewInstance(&Definition{Tag: "t"}, nil)
	items := reactive.NewRef([]string{"a", "b", "a"})
	b := NewLoopBlock(inst.Context(), "item", items.Get,
		func(s string, _ int) string { return s },
		func(_ *Context, s string, _ int) *Node { return Li(s) },
	)

	out := b.Gen()
	if len(out) != 2 {
		t.Fatalf("duplicate key should be skipped, got %d nodes", len(out))
	}
}

func TestLoopBlockIndexKeys(t *testing.T) {
	inst := NewInstance(&Definition{Tag: "t"}, nil)
	b := NewLoopBlock(inst.Context(), "n", func() []int { return []int{5, 5} }, nil,
		func(_ *Context, n int, _ int) *Node { return Li(Textf("%d", n)) },
	)
	out := b.Gen()
	if len(out) != 2 || out[0].Key != "0" || out[1].Key != "1" {
		t.Errorf("expected index keys, got %+v", out)
	}
}

func TestBlocksKeepIdentityAcrossRenders(t *testing.T) {
	var nodes []*Node
	def := &Definition{
		Tag: "t",
		Render: func(ctx *Context) *Node {
			n := ctx.If(Else(func(*Context) *Node { return Text("x") }))
			l := Each(ctx, "i", func() []int { return nil }, nil,
				func(*Context, int, int) *Node { return nil })
			nodes = append(nodes, n, l)
			return Div(n, l)
		},
	}
	inst := NewInstance(def, nil)
	inst.Render()
	inst.Render()

	if nodes[0] != nodes[2] || nodes[1] != nodes[3] {
		t.Error("blocks should keep identity across renders")
	}
	if nodes[0].Kind != KindBlock || nodes[0].Static {
		t.Errorf("expected non-static block node, got %+v", nodes[0])
	}
}
