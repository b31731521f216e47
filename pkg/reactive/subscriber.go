package reactive

import (
	"fmt"
	"sync"

	luxerr "github.com/vango-dev/lux/internal/errors"
)

// Flags describe the state of a subscriber inside a notification cycle.
type Flags uint32

const (
	// FlagDirty means the subscriber's inputs changed since its last run.
	FlagDirty Flags = 1 << iota

	// FlagUnused means the subscriber has not re-read the notifying
	// observer yet. Observers drop subscribers still unused after a cycle.
	FlagUnused
)

// Subscriber is a unit of recomputation: a Computed, an Effect or a Watcher.
type Subscriber interface {
	// ID returns the unique identifier for this subscriber.
	ID() uint64

	// Run re-executes the subscriber if it is dirty.
	Run()

	// Dispose removes every edge of the subscriber. A disposed subscriber
	// never runs again.
	Dispose()

	node() *subscriberNode
}

// subscriberNode is the bookkeeping shared by all subscriber types.
type subscriberNode struct {
	id   uint64
	kind string

	mu        sync.Mutex
	flags     Flags
	observing map[*Observer]struct{}
	seen      uint64
	running   bool
	disposed  bool
	failed    bool
}

func (n *subscriberNode) init(kind string) {
	n.id = nextID()
	n.kind = kind
	n.flags = FlagDirty
	n.observing = make(map[*Observer]struct{})
}

// FlagsOf returns the current flags of a subscriber.
func FlagsOf(s Subscriber) Flags {
	n := s.node()
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.flags
}

// Observing returns how many observers the subscriber currently depends on.
func Observing(s Subscriber) int {
	n := s.node()
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.observing)
}

func (n *subscriberNode) isDirty() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.flags&FlagDirty != 0
}

func (n *subscriberNode) isRunning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

func (n *subscriberNode) isDisposed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.disposed
}

// mark flags the subscriber for a change stamped changed. It reports
// false when the subscriber is disposed, is running, or started a run
// after the change.
func (n *subscriberNode) mark(changed uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		return false
	}
	if n.running {
		getLogger().Debug("reactive: skipped notification of running subscriber",
			"code", luxerr.CodeSubscriberLoop, "id", n.id, "kind", n.kind)
		return false
	}
	if n.seen > changed {
		return false
	}
	n.flags |= FlagDirty | FlagUnused
	return true
}

// used is called by Observer.Track.
func (n *subscriberNode) used(o *Observer) {
	n.mu.Lock()
	n.flags &^= FlagUnused
	if !n.disposed {
		n.observing[o] = struct{}{}
	}
	n.mu.Unlock()
}

func (n *subscriberNode) forget(o *Observer) {
	n.mu.Lock()
	delete(n.observing, o)
	n.mu.Unlock()
}

// execute runs fn with sub as the active subscriber. On success the
// observing set becomes exactly what fn read and stale edges are dropped.
// On panic the previous edges are restored, the panic is logged and
// execute reports false.
func (n *subscriberNode) execute(sub Subscriber, fn func()) (ok bool) {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return true
	}
	prev := n.observing
	n.observing = make(map[*Observer]struct{}, len(prev))
	n.seen = tick()
	n.running = true
	n.mu.Unlock()

	pushActive(sub)
	defer func() {
		popActive()
		r := recover()

		n.mu.Lock()
		next := n.observing
		n.running = false
		n.flags &^= FlagDirty
		disposed := n.disposed
		switch {
		case disposed:
			n.observing = make(map[*Observer]struct{})
		case r != nil:
			n.observing = prev
		}
		n.failed = r != nil
		n.mu.Unlock()

		switch {
		case disposed:
			for o := range next {
				o.unsubscribe(sub)
			}
			for o := range prev {
				o.unsubscribe(sub)
			}
		case r != nil:
			for o := range next {
				if _, had := prev[o]; !had {
					o.unsubscribe(sub)
				}
			}
		default:
			for o := range prev {
				if _, still := next[o]; !still {
					o.unsubscribe(sub)
				}
			}
		}

		ok = r == nil
		if !ok {
			err := fmt.Errorf("%w: %v", ErrSubscriberRun, r)
			getLogger().Error("reactive: subscriber panicked",
				"code", luxerr.CodeSubscriberFailed, "id", n.id, "kind", n.kind, "error", err)
		}
		instr().Ran(n.kind, ok)
	}()

	fn()
	return true
}

// dispose marks the node disposed and removes every edge.
func (n *subscriberNode) dispose(sub Subscriber) {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return
	}
	n.disposed = true
	running := n.running
	observing := n.observing
	if !running {
		n.observing = make(map[*Observer]struct{})
	}
	n.mu.Unlock()

	// A running subscriber drops its edges when execute returns.
	if running {
		return
	}
	for o := range observing {
		o.unsubscribe(sub)
	}
}

// Activate runs sub with it as the active subscriber. A panic inside the
// run is recovered and logged; Activate then reports false. A subscriber
// that is already running is not re-entered.
func Activate(sub Subscriber) (ok bool) {
	n := sub.node()
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return true
	}
	if n.running {
		n.mu.Unlock()
		getLogger().Debug("reactive: subscriber re-entered",
			"code", luxerr.CodeSubscriberLoop, "id", n.id, "kind", n.kind)
		return true
	}
	n.failed = false
	n.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			getLogger().Error("reactive: subscriber panicked",
				"code", luxerr.CodeSubscriberFailed, "id", n.id, "kind", n.kind,
				"error", fmt.Errorf("%w: %v", ErrSubscriberRun, r))
			ok = false
		}
	}()

	sub.Run()

	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.failed
}
