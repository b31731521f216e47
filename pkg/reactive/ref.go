package reactive

import (
	"fmt"
	"sync"
)

// Reader is a reactive value read without knowing its type. Ref, Computed
// and the readers returned by ReaderFunc implement it. Reads are tracked.
type Reader interface {
	ReadAny() any
}

// ReaderFunc adapts a plain function to Reader. The function's own reads
// are tracked by whoever calls ReadAny.
type ReaderFunc func() any

// ReadAny calls f.
func (f ReaderFunc) ReadAny() any { return f() }

// anyWriter is implemented by cells that accept type-erased writes.
type anyWriter interface {
	writeAny(v any) error
}

// Ref is a single mutable reactive cell.
type Ref[T any] struct {
	mu     sync.RWMutex
	value  T
	obs    *Observer
	equals func(a, b T) bool
}

// NewRef creates a Ref holding v.
func NewRef[T any](v T) *Ref[T] {
	return &Ref[T]{value: v, obs: NewObserver()}
}

// WithEquals replaces the equality used by Set to decide whether a write
// is a change. It returns r for chaining.
func (r *Ref[T]) WithEquals(fn func(a, b T) bool) *Ref[T] {
	r.mu.Lock()
	r.equals = fn
	r.mu.Unlock()
	return r
}

// Get returns the value and tracks the read.
func (r *Ref[T]) Get() T {
	r.obs.Track()
	return r.Peek()
}

// Peek returns the value without tracking.
func (r *Ref[T]) Peek() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set stores v. Dependents are notified only if v differs from the
// current value.
func (r *Ref[T]) Set(v T) {
	r.mu.Lock()
	if r.same(r.value, v) {
		r.mu.Unlock()
		return
	}
	r.value = v
	r.mu.Unlock()

	r.obs.Notify()
}

// Update sets the value to fn(current).
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.Peek()))
}

// Observer returns the observer of the cell.
func (r *Ref[T]) Observer() *Observer {
	return r.obs
}

// ReadAny implements Reader.
func (r *Ref[T]) ReadAny() any {
	return r.Get()
}

func (r *Ref[T]) writeAny(v any) error {
	if v == nil {
		var zero T
		r.Set(zero)
		return nil
	}
	t, ok := v.(T)
	if !ok {
		return fmt.Errorf("%w: cannot store %T in Ref[%T]", ErrTypeMismatch, v, r.value)
	}
	r.Set(t)
	return nil
}

func (r *Ref[T]) same(a, b T) bool {
	if r.equals != nil {
		return r.equals(a, b)
	}
	return identical(a, b)
}

// String returns a debug representation of the ref.
func (r *Ref[T]) String() string {
	return fmt.Sprintf("Ref(%v)", r.Peek())
}
