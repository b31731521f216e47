package reactive

import "sync"

// Registry indexes observers by (owner, key). It backs reactive objects
// whose cells are addressed by key, such as State.
//
// Owners are compared by identity; use a pointer.
type Registry struct {
	mu     sync.Mutex
	owners map[any]map[string]*Observer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[any]map[string]*Observer)}
}

// defaultRegistry is used by the package-level Track and Notify.
var defaultRegistry = NewRegistry()

// Observer returns the observer of (owner, key), creating it if create is set.
func (r *Registry) Observer(owner any, key string, create bool) *Observer {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys, ok := r.owners[owner]
	if !ok {
		if !create {
			return nil
		}
		keys = make(map[string]*Observer)
		r.owners[owner] = keys
	}
	o, ok := keys[key]
	if !ok && create {
		o = NewObserver()
		keys[key] = o
	}
	return o
}

// Track records that the active subscriber read (owner, key). The
// observer is only created when a subscriber is active.
func (r *Registry) Track(owner any, key string) {
	if Active() == nil {
		return
	}
	r.Observer(owner, key, true).Track()
}

// Notify notifies the subscribers of (owner, key), if any.
func (r *Registry) Notify(owner any, key string) {
	if o := r.Observer(owner, key, false); o != nil {
		o.Notify()
	}
}

// Remove drops the observer of (owner, key) and all of its edges.
func (r *Registry) Remove(owner any, key string) {
	r.mu.Lock()
	keys := r.owners[owner]
	o := keys[key]
	delete(keys, key)
	if len(keys) == 0 {
		delete(r.owners, owner)
	}
	r.mu.Unlock()

	if o != nil {
		o.clear()
	}
}

// Forget drops every observer of owner.
func (r *Registry) Forget(owner any) {
	r.mu.Lock()
	keys := r.owners[owner]
	delete(r.owners, owner)
	r.mu.Unlock()

	for _, o := range keys {
		o.clear()
	}
}

// Len returns the number of observers indexed for owner.
func (r *Registry) Len(owner any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners[owner])
}

// Track records a read of (owner, key) in the default registry.
func Track(owner any, key string) { defaultRegistry.Track(owner, key) }

// Notify notifies the readers of (owner, key) in the default registry.
func Notify(owner any, key string) { defaultRegistry.Notify(owner, key) }

// Remove drops (owner, key) from the default registry.
func Remove(owner any, key string) { defaultRegistry.Remove(owner, key) }

// Forget drops every observer of owner from the default registry.
func Forget(owner any) { defaultRegistry.Forget(owner) }
