package vdom

import (
	"strconv"
	"sync"

	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/reactive"
)

// Block is a reactive region of a tree. The reconciler calls Gen inside
// an effect and re-patches the block's children whenever a value read by
// Gen changes.
type Block interface {
	// Gen returns the current children of the block.
	Gen() []*Node

	// Dispose releases the reactive values held by the block.
	Dispose()
}

// Branch is one arm of a condition block. A nil When always matches.
type Branch struct {
	When   func(ctx *Context) bool
	Render RenderFunc
}

// Case creates a conditional branch.
func Case(when func(ctx *Context) bool, render RenderFunc) Branch {
	return Branch{When: when, Render: render}
}

// Else creates a branch that always matches.
func Else(render RenderFunc) Branch {
	return Branch{Render: render}
}

// ConditionBlock renders the first branch whose condition holds. Each
// branch is rendered once and its output reused when it is selected again.
type ConditionBlock struct {
	ctx      *Context
	branches []Branch
	which    *reactive.Computed[int]

	mu       sync.Mutex
	rendered map[int]*Node
	empty    *Node
}

// NewConditionBlock creates a ConditionBlock.
func NewConditionBlock(ctx *Context, branches ...Branch) *ConditionBlock {
	b := &ConditionBlock{
		ctx:      ctx,
		branches: branches,
		rendered: make(map[int]*Node),
		empty:    Comment(""),
	}
	reactive.Untracked(func() {
		b.which = reactive.NewComputed(b.selectBranch)
	})
	return b
}

func (b *ConditionBlock) selectBranch() int {
	for i, br := range b.branches {
		if br.When == nil || br.When(b.ctx) {
			return i
		}
	}
	return -1
}

// Gen implements Block.
func (b *ConditionBlock) Gen() []*Node {
	i := b.which.Get()
	if i < 0 || b.branches[i].Render == nil {
		return []*Node{b.empty}
	}

	b.mu.Lock()
	n, ok := b.rendered[i]
	b.mu.Unlock()
	if !ok {
		reactive.Untracked(func() { n = b.branches[i].Render(b.ctx) })
		if n == nil {
			n = b.empty
		}
		b.mu.Lock()
		b.rendered[i] = n
		b.mu.Unlock()
	}
	return []*Node{n}
}

// Selected returns the index of the selected branch, or -1.
func (b *ConditionBlock) Selected() int {
	return b.which.Peek()
}

// Dispose implements Block.
func (b *ConditionBlock) Dispose() {
	b.which.Dispose()
}

// If creates a condition block node. Inside a render pass the same call
// site returns the same node.
//
//	ctx.If(
//	    vdom.Case(func(c *vdom.Context) bool { return c.Get("open") == true }, panel),
//	    vdom.Else(placeholder),
//	)
func (c *Context) If(branches ...Branch) *Node {
	return c.cached("if", func() (any, func()) {
		b := NewConditionBlock(c, branches...)
		return &Node{ID: nextNodeID(), Kind: KindBlock, Block: b}, b.Dispose
	}).(*Node)
}

// LoopBlock renders one node per item of a list. Nodes are cached by key,
// so the body runs once per key and reordering the list moves nodes.
type LoopBlock[T any] struct {
	ctx   *Context
	alias string
	items *reactive.Computed[[]T]
	key   func(item T, index int) string
	body  func(ctx *Context, item T, index int) *Node

	mu    sync.Mutex
	cache map[string]*Node
}

// NewLoopBlock creates a LoopBlock. A nil key uses the item index.
func NewLoopBlock[T any](ctx *Context, alias string, items func() []T, key func(T, int) string, body func(*Context, T, int) *Node) *LoopBlock[T] {
	b := &LoopBlock[T]{
		ctx:   ctx,
		alias: alias,
		key:   key,
		body:  body,
		cache: make(map[string]*Node),
	}
	reactive.Untracked(func() {
		b.items = reactive.NewComputed(items)
	})
	return b
}

// Gen implements Block. Items with a key already produced by an earlier
// item are logged and skipped.
func (b *LoopBlock[T]) Gen() []*Node {
	list := b.items.Get()

	b.mu.Lock()
	defer b.mu.Unlock()

	nodes := make([]*Node, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, item := range list {
		k := strconv.Itoa(i)
		if b.key != nil {
			k = b.key(item, i)
		}
		if seen[k] {
			b.ctx.Logger().Warn("vdom: duplicate key in loop, skipping item",
				"code", luxerr.CodeDuplicateKey, "key", k, "index", i)
			continue
		}
		seen[k] = true

		n, ok := b.cache[k]
		if !ok {
			item, i := item, i
			reactive.Untracked(func() {
				n = b.body(b.ctx.With(b.alias, item), item, i)
			})
			if n == nil {
				n = Comment("")
			}
			n.Key = k
			b.cache[k] = n
		}
		nodes = append(nodes, n)
	}

	for k := range b.cache {
		if !seen[k] {
			delete(b.cache, k)
		}
	}
	return nodes
}

// Dispose implements Block.
func (b *LoopBlock[T]) Dispose() {
	b.items.Dispose()
}

// Each creates a loop block node over items. Inside a render pass the same
// call site returns the same node.
//
//	vdom.Each(ctx, "todo", todos.Get,
//	    func(t Todo, _ int) string { return t.ID },
//	    func(c *vdom.Context, t Todo, _ int) *vdom.Node { return vdom.Li(t.Title) },
//	)
func Each[T any](ctx *Context, alias string, items func() []T, key func(T, int) string, body func(*Context, T, int) *Node) *Node {
	return ctx.cached("each", func() (any, func()) {
		b := NewLoopBlock(ctx, alias, items, key, body)
		return &Node{ID: nextNodeID(), Kind: KindBlock, Block: b}, b.Dispose
	}).(*Node)
}
