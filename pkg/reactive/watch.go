package reactive

import "sync"

// Watcher re-reads a source whenever its dependencies change and calls a
// callback with the value when it differs from the previous one.
type Watcher[T any] struct {
	n      subscriberNode
	source func() T
	fn     func(T)

	mu     sync.Mutex
	value  T
	primed bool
	equals func(a, b T) bool
}

// Watch creates a Watcher. fn is called immediately with the current
// value of source, then after every change. Reads made by fn are not
// tracked.
func Watch[T any](source func() T, fn func(T)) *Watcher[T] {
	w := &Watcher[T]{source: source, fn: fn}
	w.n.init("watch")
	Activate(w)
	return w
}

// WatchWithEquals is Watch with a custom change test.
func WatchWithEquals[T any](source func() T, equals func(a, b T) bool, fn func(T)) *Watcher[T] {
	w := &Watcher[T]{source: source, fn: fn, equals: equals}
	w.n.init("watch")
	Activate(w)
	return w
}

// WatchReader watches a type-erased Reader.
func WatchReader(r Reader, fn func(any)) *Watcher[any] {
	return Watch(r.ReadAny, fn)
}

// ID implements Subscriber.
func (w *Watcher[T]) ID() uint64 { return w.n.id }

func (w *Watcher[T]) node() *subscriberNode { return &w.n }

// Run implements Subscriber.
func (w *Watcher[T]) Run() {
	if !w.n.isDirty() || w.n.isDisposed() {
		return
	}

	var next T
	if !w.n.execute(w, func() { next = w.source() }) {
		return
	}

	w.mu.Lock()
	changed := !w.primed || !w.same(w.value, next)
	w.value = next
	w.primed = true
	w.mu.Unlock()

	if changed {
		Untracked(func() { w.fn(next) })
	}
}

// Value returns the last value read from the source.
func (w *Watcher[T]) Value() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Dispose stops the watcher.
func (w *Watcher[T]) Dispose() {
	w.n.dispose(w)
}

func (w *Watcher[T]) same(a, b T) bool {
	if w.equals != nil {
		return w.equals(a, b)
	}
	return identical(a, b)
}
