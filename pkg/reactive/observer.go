package reactive

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Observer is the dependency record of one reactive cell. It is created
// on demand for the cell and never shared between cells.
type Observer struct {
	id uint64

	mu   sync.Mutex
	subs map[Subscriber]struct{}

	// changed stamps the last change to the cell.
	changed atomic.Uint64

	// owner is the subscriber computing this cell, if any. It never tracks
	// its own observer.
	owner *subscriberNode
}

// NewObserver creates an Observer with no subscribers.
func NewObserver() *Observer {
	return &Observer{
		id:   nextID(),
		subs: make(map[Subscriber]struct{}),
	}
}

func newOwnedObserver(owner *subscriberNode) *Observer {
	o := NewObserver()
	o.owner = owner
	return o
}

// ID returns the unique identifier for this observer.
func (o *Observer) ID() uint64 {
	return o.id
}

// Track records an edge between the observer and the active subscriber.
// It does nothing when no subscriber is active.
func (o *Observer) Track() {
	sub := Active()
	if sub == nil {
		return
	}
	n := sub.node()
	if n == o.owner {
		return
	}

	o.mu.Lock()
	o.subs[sub] = struct{}{}
	o.mu.Unlock()

	n.used(o)
}

// Notify records a change of the cell and re-runs every dirty dependent.
// Inside a Batch the notification is deferred to the end of the batch.
func (o *Observer) Notify() {
	o.changed.Store(tick())
	o.dispatch()
}

// notifyDerived notifies the dependents of a Computed whose run started
// at started. Subscribers that started after it read the new value and
// are skipped.
func (o *Observer) notifyDerived(started uint64) {
	o.changed.Store(started)
	o.dispatch()
}

func (o *Observer) dispatch() {
	ctx := getTrackingContext()
	if ctx.batchDepth > 0 {
		for _, p := range ctx.pending {
			if p == o {
				return
			}
		}
		ctx.pending = append(ctx.pending, o)
		return
	}
	flush([]*Observer{o})
}

// Subscribers returns how many subscribers depend on the observer.
func (o *Observer) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

func (o *Observer) hasSubscribers() bool {
	return o.Subscribers() > 0
}

// snapshot copies the subscriber set so that subscribers can be notified
// without holding the lock.
func (o *Observer) snapshot() []Subscriber {
	o.mu.Lock()
	defer o.mu.Unlock()
	subs := make([]Subscriber, 0, len(o.subs))
	for s := range o.subs {
		subs = append(subs, s)
	}
	return subs
}

func (o *Observer) unsubscribe(sub Subscriber) {
	o.mu.Lock()
	delete(o.subs, sub)
	o.mu.Unlock()
}

// cleanup drops every subscriber still flagged unused.
func (o *Observer) cleanup() {
	for _, s := range o.snapshot() {
		n := s.node()
		n.mu.Lock()
		unused := n.flags&FlagUnused != 0 && !n.running
		n.mu.Unlock()
		if unused {
			o.unsubscribe(s)
			n.forget(o)
		}
	}
}

// clear removes every edge of the observer.
func (o *Observer) clear() {
	for _, s := range o.snapshot() {
		o.unsubscribe(s)
		s.node().forget(o)
	}
}

// flush marks the dependents of all observers, runs each dirty one once
// in creation order, then lets every observer drop unused subscribers.
func flush(observers []*Observer) {
	threshold := make(map[Subscriber]uint64)
	for _, o := range observers {
		changed := o.changed.Load()
		for _, s := range o.snapshot() {
			if t, ok := threshold[s]; !ok || changed > t {
				threshold[s] = changed
			}
		}
	}

	marked := make([]Subscriber, 0, len(threshold))
	for s, changed := range threshold {
		if s.node().mark(changed) {
			marked = append(marked, s)
		}
	}
	sort.Slice(marked, func(i, j int) bool { return marked[i].ID() < marked[j].ID() })

	activated := 0
	for _, s := range marked {
		// A subscriber may already have run as a side effect of an
		// earlier one in this cycle.
		if !s.node().isDirty() {
			continue
		}
		Activate(s)
		activated++
	}

	for _, o := range observers {
		o.cleanup()
	}
	instr().Notified(activated)
}
