package reconcile_test

import (
	"testing"

	"github.com/vango-dev/lux/pkg/surface"
	. "github.com/vango-dev/lux/pkg/vdom"
	"github.com/vango-dev/lux/pkg/vtest"
)

var clicker = &Definition{
	Tag:   "clicker",
	State: func() map[string]any { return map[string]any{"n": 0} },
	Methods: map[string]Method{
		"inc": func(ctx *Context, _ ...any) any {
			return ctx.Set("n", ctx.Get("n").(int)+1)
		},
	},
	Render: func(ctx *Context) *Node {
		return Button(On("click", ctx.Handler("inc")), Textf("%d", ctx.Get("n")))
	},
}

// bannered renders an optional banner in front of a cached child.
var bannered = &Definition{
	Tag:   "bannered",
	State: func() map[string]any { return map[string]any{"banner": true} },
	Render: func(ctx *Context) *Node {
		var children []any
		if ctx.Get("banner") == true {
			children = append(children, P("banner"))
		}
		children = append(children, ctx.Component(clicker))
		return Div(children...)
	},
}

func child(root *Node) *Node {
	div := root.Children[0]
	return div.Children[len(div.Children)-1]
}

func TestCachedChildSurvivesRemovedSibling(t *testing.T) {
	h := vtest.New(t)
	root := h.Mount(Comp(bannered))
	h.ExpectHTML("<div><p>banner</p><button>0</button></div>")
	inst := child(root).Instance

	root.Instance.State.Set("banner", false)
	h.ExpectHTML("<div><button>0</button></div>")
	h.ExpectOps(surface.OpMove, 0)
	h.ExpectOps(surface.OpCreate, 0)
	h.ExpectSnapshotJSON(`{
		"h": 1, "kind": "element", "tag": "#root",
		"children": [{
			"h": 2, "kind": "element", "tag": "div",
			"children": [{
				"h": 5, "kind": "element", "tag": "button", "events": ["click"],
				"children": [{"h": 6, "kind": "text", "text": "0"}]
			}]
		}]
	}`)
	if got := child(root).Instance; got != inst {
		t.Fatal("child component lost its instance")
	}

	h.ResetOps()
	h.Click(child(root))
	h.ExpectHTML("<div><button>1</button></div>")
	h.ExpectOps(surface.OpSetText, 1)
	h.ExpectOpCount(1)

	h.ResetOps()
	root.Instance.State.Set("banner", true)
	h.ExpectHTML("<div><p>banner</p><button>1</button></div>")
	h.ExpectOps(surface.OpMove, 0)

	h.Reconciler().Unmount(root)
	if n := h.Reconciler().Mounted(); n != 0 {
		t.Errorf("expected no bindings after unmount, got %d", n)
	}
	h.ExpectHTML("")
}

// swapped renders two cached children whose order follows state.
var swapped = &Definition{
	Tag:   "swapped",
	State: func() map[string]any { return map[string]any{"flip": false} },
	Render: func(ctx *Context) *Node {
		a := ctx.Component(clicker, Key("a"))
		b := ctx.Component(clicker, Key("b"))
		if ctx.Get("flip") == true {
			return Div(Span("x"), b, a)
		}
		return Div(Span("x"), a, b)
	},
}

func TestCachedChildrenReorder(t *testing.T) {
	h := vtest.New(t)
	root := h.Mount(Comp(swapped))
	div := root.Children[0]
	h.Click(div.Children[1])
	h.ExpectHTML("<div><span>x</span><button>1</button><button>0</button></div>")

	h.ResetOps()
	root.Instance.State.Set("flip", true)
	h.ExpectHTML("<div><span>x</span><button>0</button><button>1</button></div>")
	h.ExpectOps(surface.OpMove, 1)
	h.ExpectOps(surface.OpCreate, 0)
	h.ExpectOps(surface.OpRemove, 0)
}

func TestKeyedShuffleOps(t *testing.T) {
	list := func(keys ...string) *Node {
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = Li(Key(k), k)
		}
		return Ul(items...)
	}
	html := func(keys ...string) string {
		s := "<ul>"
		for _, k := range keys {
			s += "<li>" + k + "</li>"
		}
		return s + "</ul>"
	}

	tests := []struct {
		name  string
		from  []string
		to    []string
		moves int
	}{
		{"swap ends", []string{"a", "b", "c", "d"}, []string{"d", "b", "c", "a"}, 2},
		{"rotate", []string{"a", "b", "c", "d"}, []string{"b", "c", "d", "a"}, 1},
		{"reverse", []string{"a", "b", "c"}, []string{"c", "b", "a"}, 2},
		{"unchanged", []string{"a", "b"}, []string{"a", "b"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := vtest.New(t)
			h.Mount(list(tt.from...))
			h.Patch(list(tt.to...))

			if want, got := html(tt.to...), h.Memory().HTML(); got != want {
				t.Fatalf("html mismatch: %s", vtest.Diff(want, got))
			}
			h.ExpectOps(surface.OpMove, tt.moves)
			h.ExpectOps(surface.OpCreate, 0)
		})
	}
}
