// Package reactive provides the fine-grained reactivity graph for lux.
//
// Every reactive cell (a Ref, a Computed, or one key of a State) owns an
// Observer. Every unit of recomputation (a Computed, an Effect, a Watcher)
// is a Subscriber. Reading a cell while a subscriber is active records an
// edge between the two; writing a cell notifies the subscribers on its
// edges, which are marked dirty and re-run.
//
// # Core Types
//
// Ref[T] is a single mutable cell:
//
//	count := NewRef(0)
//	value := count.Get() // tracked read
//	count.Set(5)         // notifies dependents only if the value changed
//
// Computed[T] is a memoized derived cell:
//
//	doubled := NewComputed(func() int { return count.Get() * 2 })
//	doubled.Get() // recomputes synchronously if dirty
//
// Effect runs side effects whenever what it read changes:
//
//	NewEffect(func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//
// State wraps a plain map so that Get tracks and Set notifies:
//
//	state := NewState(map[string]any{"count": 0})
//	state.Set("count", 1)
//
// # Dependency Pruning
//
// A subscriber's edges are exactly the observers it read during its last
// successful run. Edges that disappear between runs (a branch no longer
// taken) are removed as soon as the run finishes, and observers drop
// subscribers left unused after a notification.
//
// # Batching
//
// Batch defers notifications until the outermost batch returns; each
// affected subscriber then runs once:
//
//	Batch(func() {
//	    state.Set("first", "Ada")
//	    state.Set("last", "Lovelace")
//	})
//
// # Threading
//
// Tracking is per goroutine. The graph is meant to be driven from one
// goroutine at a time; Scheduler serializes work posted from others.
package reactive
