// Package bind compiles expression strings into reactive values.
//
// An expression reads names from a Scope, typically a component context
// or a reactive.State:
//
//	label, err := bind.Computed(ctx, `count > 0 ? "items: " + string(count) : "empty"`)
//
// Reads go through the scope, so a Computed built from an expression
// tracks exactly the names the expression mentions.
package bind

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/vdom"
)

// ErrCompile is returned for expressions that do not parse or compile.
var ErrCompile = errors.New("bind: invalid expression")

// Scope resolves the names an expression reads.
type Scope interface {
	Lookup(name string) (any, bool)
}

// Expr is a compiled expression.
type Expr struct {
	src     string
	program *vm.Program
	names   []string
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Expr{}
)

// Compile parses and compiles src. Compiled expressions are cached by
// source.
func Compile(src string) (*Expr, error) {
	cacheMu.Lock()
	e, ok := cache[src]
	cacheMu.Unlock()
	if ok {
		return e, nil
	}

	tree, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrCompile, src, err)
	}
	v := &nameCollector{seen: map[string]struct{}{}}
	ast.Walk(&tree.Node, v)

	names := v.names()
	opts := []expr.Option{expr.AllowUndefinedVariables()}
	for _, name := range names {
		// A name read as a value shadows the builtin of the same name.
		if _, ok := builtin.Index[name]; ok {
			opts = append(opts, expr.DisableBuiltin(name))
		}
	}
	program, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrCompile, src, err)
	}

	e = &Expr{src: src, program: program, names: names}
	cacheMu.Lock()
	cache[src] = e
	cacheMu.Unlock()
	return e, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the source of the expression.
func (e *Expr) String() string {
	return e.src
}

// Names returns the free names the expression reads, sorted.
func (e *Expr) Names() []string {
	return append([]string(nil), e.names...)
}

// Eval runs the expression with names resolved through scope. Names the
// scope does not know evaluate to nil.
func (e *Expr) Eval(scope Scope) (any, error) {
	env := make(map[string]any, len(e.names))
	for _, name := range e.names {
		if v, ok := scope.Lookup(name); ok {
			env[name] = v
		} else {
			env[name] = nil
		}
	}
	out, err := vm.Run(e.program, env)
	if err != nil {
		return nil, fmt.Errorf("bind: %q: %w", e.src, err)
	}
	return out, nil
}

// Computed compiles src and returns a Computed evaluating it in scope.
// Evaluation errors are logged and read as nil.
func Computed(scope Scope, src string) (*reactive.Computed[any], error) {
	e, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return e.Computed(scope), nil
}

// Computed returns a Computed evaluating e in scope.
func (e *Expr) Computed(scope Scope) *reactive.Computed[any] {
	return reactive.NewComputed(func() any {
		v, err := e.Eval(scope)
		if err != nil {
			slog.Default().Warn("bind: evaluation failed",
				"code", luxerr.CodeBindingFailed, "expr", e.src, "error", err)
			return nil
		}
		return v
	})
}

// Text returns a text node bound to src.
func Text(scope Scope, src string) (*vdom.Node, error) {
	c, err := Computed(scope, src)
	if err != nil {
		return nil, err
	}
	return vdom.BindText(c), nil
}

// Attr returns an attribute argument bound to src.
func Attr(name string, scope Scope, src string) (vdom.AttrArg, error) {
	c, err := Computed(scope, src)
	if err != nil {
		return vdom.AttrArg{}, err
	}
	return vdom.Attr(name, c), nil
}

// nameCollector gathers identifiers that are not member names, closure
// variables, or builtins.
type nameCollector struct {
	seen map[string]struct{}
}

func (v *nameCollector) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok || id.Value == "" || id.Value == "#" {
		return
	}
	v.seen[id.Value] = struct{}{}
}

func (v *nameCollector) names() []string {
	out := make([]string, 0, len(v.seen))
	for name := range v.seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
