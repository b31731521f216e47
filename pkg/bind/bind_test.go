package bind

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/vdom"
)

func TestCompileNames(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"count + 1", []string{"count"}},
		{`user.name + " " + title`, []string{"title", "user"}},
		{"a > b ? a : b", []string{"a", "b"}},
		{`"static"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if got := e.Names(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompileError(t *testing.T) {
	_, err := Compile("count +")
	if !errors.Is(err, ErrCompile) {
		t.Errorf("expected ErrCompile, got %v", err)
	}
}

func TestCompileCaches(t *testing.T) {
	a := MustCompile("x * 2")
	b := MustCompile("x * 2")
	if a != b {
		t.Error("expected the cached expression")
	}
}

func TestEval(t *testing.T) {
	s := reactive.NewState(map[string]any{"count": 2, "user": map[string]any{"name": "ann"}})

	got, err := MustCompile(`user.name + ":" + string(count * 2)`).Eval(s)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != "ann:4" {
		t.Errorf("expected ann:4, got %v", got)
	}

	missing, err := MustCompile("nothing == nil").Eval(s)
	if err != nil || missing != true {
		t.Errorf("unknown names should read as nil, got %v, %v", missing, err)
	}
}

func TestEvalNamesShadowBuiltins(t *testing.T) {
	s := reactive.NewState(map[string]any{"count": 3, "len": 4})

	tests := []struct {
		src  string
		want any
	}{
		{"count + 1", 4},
		{"count * len", 12},
		{`string(count) + ":" + string(len("abc"))`, "3:3"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := MustCompile(tt.src).Eval(s)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestComputedTracksNames(t *testing.T) {
	s := reactive.NewState(map[string]any{"a": 1, "b": 2, "other": 0})
	c, err := Computed(s, "a + b")
	if err != nil {
		t.Fatalf("Computed: %v", err)
	}

	runs := 0
	reactive.NewEffect(func() reactive.Cleanup {
		c.Get()
		runs++
		return nil
	})

	s.Set("a", 10)
	if c.Get() != 12 {
		t.Errorf("expected 12, got %v", c.Get())
	}
	s.Set("other", 1)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestComputedEvalErrorReadsNil(t *testing.T) {
	s := reactive.NewState(map[string]any{"n": "x"})
	c, err := Computed(s, "n / 2")
	if err != nil {
		t.Fatalf("Computed: %v", err)
	}
	if v := c.Get(); v != nil {
		t.Errorf("expected nil, got %v", v)
	}
}

func TestTextAndAttr(t *testing.T) {
	s := reactive.NewState(map[string]any{"n": 1})

	text, err := Text(s, `"n=" + string(n)`)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	attr, err := Attr("data-n", s, "n")
	if err != nil {
		t.Fatalf("Attr: %v", err)
	}
	node := vdom.Div(attr, text)
	if node.Attrs.Dynamics["data-n"] == nil || node.Children[0].Value == nil {
		t.Fatalf("expected bound attribute and text, got %+v", node)
	}

	if got := node.Children[0].Value.ReadAny(); got != "n=1" {
		t.Errorf("expected n=1, got %v", got)
	}
	s.Set("n", 5)
	if got := node.Attrs.Dynamics["data-n"].ReadAny(); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
}
