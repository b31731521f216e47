package reactive

import "sync"

// Cleanup is returned by an effect function. It runs before the effect
// re-runs and when the effect is disposed.
type Cleanup func()

// Effect is a reactive side effect. It runs once when created and again
// in every notification cycle in which one of the cells it read changed.
type Effect struct {
	n  subscriberNode
	fn func() Cleanup

	mu      sync.Mutex
	cleanup Cleanup
}

// NewEffect creates an Effect and runs it immediately.
//
//	NewEffect(func() Cleanup {
//	    fmt.Println("count:", count.Get())
//	    return nil
//	})
func NewEffect(fn func() Cleanup) *Effect {
	e := &Effect{fn: fn}
	e.n.init("effect")
	Activate(e)
	return e
}

// ID implements Subscriber.
func (e *Effect) ID() uint64 { return e.n.id }

func (e *Effect) node() *subscriberNode { return &e.n }

// Run implements Subscriber.
func (e *Effect) Run() {
	if !e.n.isDirty() || e.n.isDisposed() {
		return
	}
	e.runCleanup()

	var cleanup Cleanup
	if e.n.execute(e, func() { cleanup = e.fn() }) {
		e.mu.Lock()
		e.cleanup = cleanup
		e.mu.Unlock()
	}
}

// Dispose stops the effect and runs its pending cleanup.
func (e *Effect) Dispose() {
	if e.n.isDisposed() {
		return
	}
	e.n.dispose(e)
	e.runCleanup()
}

// Disposed reports whether Dispose was called.
func (e *Effect) Disposed() bool {
	return e.n.isDisposed()
}

func (e *Effect) runCleanup() {
	e.mu.Lock()
	cleanup := e.cleanup
	e.cleanup = nil
	e.mu.Unlock()

	if cleanup != nil {
		Untracked(cleanup)
	}
}
