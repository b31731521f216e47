package reactive

import (
	"fmt"
	"sync"

	luxerr "github.com/vango-dev/lux/internal/errors"
)

// Computed is a memoized value derived from other reactive cells.
//
// The value is recomputed when a dependency changes and something still
// depends on the Computed. Without dependents it stays dirty until the
// next Get.
type Computed[T any] struct {
	n   subscriberNode
	obs *Observer
	fn  func() T

	mu     sync.RWMutex
	value  T
	equals func(a, b T) bool
}

// NewComputed creates a Computed and evaluates fn once.
func NewComputed[T any](fn func() T) *Computed[T] {
	c := &Computed[T]{fn: fn}
	c.n.init("computed")
	c.obs = newOwnedObserver(&c.n)
	c.recompute()
	return c
}

// WithEquals replaces the equality used to decide whether a recomputed
// value is a change. It returns c for chaining.
func (c *Computed[T]) WithEquals(fn func(a, b T) bool) *Computed[T] {
	c.mu.Lock()
	c.equals = fn
	c.mu.Unlock()
	return c
}

// ID implements Subscriber.
func (c *Computed[T]) ID() uint64 { return c.n.id }

func (c *Computed[T]) node() *subscriberNode { return &c.n }

// Run implements Subscriber.
func (c *Computed[T]) Run() {
	if !c.n.isDirty() || !c.obs.hasSubscribers() {
		return
	}
	c.recompute()
}

// Get returns the value, recomputing it first if it is dirty, and tracks
// the read. Inside its own computation Get returns the cached value.
func (c *Computed[T]) Get() T {
	c.obs.Track()
	if c.n.isDirty() && !c.n.isRunning() && !c.n.isDisposed() {
		c.recompute()
	}
	return c.Peek()
}

// Peek returns the cached value without tracking or recomputing.
func (c *Computed[T]) Peek() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Dirty reports whether the cached value is stale.
func (c *Computed[T]) Dirty() bool {
	return c.n.isDirty()
}

// Observer returns the observer of the computed value.
func (c *Computed[T]) Observer() *Observer {
	return c.obs
}

// ReadAny implements Reader.
func (c *Computed[T]) ReadAny() any {
	return c.Get()
}

// Write always fails: a computed value cannot be assigned.
func (c *Computed[T]) Write(any) error {
	return c.writeAny(nil)
}

func (c *Computed[T]) writeAny(any) error {
	err := fmt.Errorf("%w: cannot assign to computed value", ErrInvalidMutation)
	getLogger().Warn("reactive: write to computed value rejected",
		"code", luxerr.CodeInvalidMutation, "id", c.n.id)
	return err
}

// Dispose detaches the computed from its dependencies and dependents.
func (c *Computed[T]) Dispose() {
	c.n.dispose(c)
	c.obs.clear()
}

func (c *Computed[T]) recompute() {
	var (
		next    T
		changed bool
	)
	ok := c.n.execute(c, func() {
		next = c.fn()
	})
	if !ok {
		return
	}

	c.mu.Lock()
	if c.equals != nil {
		changed = !c.equals(c.value, next)
	} else {
		changed = !identical(c.value, next)
	}
	if changed {
		c.value = next
	}
	c.mu.Unlock()

	if changed {
		c.n.mu.Lock()
		started := c.n.seen
		c.n.mu.Unlock()
		c.obs.notifyDerived(started)
	}
}

// String returns a debug representation of the computed value.
func (c *Computed[T]) String() string {
	return fmt.Sprintf("Computed(%v)", c.Peek())
}
