package reactive

import (
	"errors"
	"sort"
	"sync"

	luxerr "github.com/vango-dev/lux/internal/errors"
)

// State wraps a plain map so that reads are tracked per key and writes
// notify the readers of that key.
//
// Members that are themselves reactive are unwrapped: Get on a Ref or
// Computed member returns its value, Set on a Ref member writes through to
// the Ref, and Set on a Computed member fails with ErrInvalidMutation.
type State struct {
	mu       sync.RWMutex
	data     map[string]any
	readonly bool
	equals   func(a, b any) bool

	registry *Registry
	keys     *Observer
}

// StateOption configures a State.
type StateOption func(*State)

// WithReadonly makes every Set and Delete fail with ErrReadOnly.
func WithReadonly() StateOption {
	return func(s *State) { s.readonly = true }
}

// WithStateEquals replaces the deep comparison used to decide whether a
// write is a change.
func WithStateEquals(fn func(a, b any) bool) StateOption {
	return func(s *State) { s.equals = fn }
}

// WithRegistry indexes the state's observers in r instead of the default
// registry.
func WithRegistry(r *Registry) StateOption {
	return func(s *State) { s.registry = r }
}

// NewState wraps data. The map is owned by the State afterwards; a nil map
// starts empty.
func NewState(data map[string]any, opts ...StateOption) *State {
	if data == nil {
		data = make(map[string]any)
	}
	s := &State{
		data:     data,
		equals:   deepEqual,
		registry: defaultRegistry,
		keys:     NewObserver(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewReadonlyState wraps data as a read-only State.
func NewReadonlyState(data map[string]any) *State {
	return NewState(data, WithReadonly())
}

// Readonly reports whether writes are rejected.
func (s *State) Readonly() bool {
	return s.readonly
}

// Get returns the value of key and tracks the read. Reactive members are
// unwrapped. Absent keys read as nil.
func (s *State) Get(key string) any {
	s.registry.Track(s, key)

	s.mu.RLock()
	v := s.data[key]
	s.mu.RUnlock()

	if r, ok := v.(Reader); ok {
		return r.ReadAny()
	}
	return v
}

// Lookup is Get that also reports whether key is present.
func (s *State) Lookup(key string) (any, bool) {
	s.registry.Track(s, key)

	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()

	if r, isReader := v.(Reader); isReader {
		return r.ReadAny(), ok
	}
	return v, ok
}

// Has reports whether key is present and tracks the read.
func (s *State) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Set stores v under key. Readers of key are notified only when v is
// deeply unequal to the current value.
func (s *State) Set(key string, v any) error {
	if s.readonly {
		getLogger().Warn("reactive: write to read-only state rejected",
			"code", luxerr.CodeReadOnly, "key", key)
		return ErrReadOnly
	}

	s.mu.Lock()
	cur, had := s.data[key]
	if w, ok := cur.(anyWriter); ok {
		s.mu.Unlock()
		err := w.writeAny(v)
		if err != nil && !errors.Is(err, ErrInvalidMutation) {
			getLogger().Warn("reactive: state member rejected write",
				"code", luxerr.CodeInvalidMutation, "key", key, "error", err)
		}
		return err
	}
	if had && s.equals(cur, v) {
		s.mu.Unlock()
		return nil
	}
	s.data[key] = v
	s.mu.Unlock()

	if had {
		s.registry.Notify(s, key)
		return nil
	}
	Batch(func() {
		s.registry.Notify(s, key)
		s.keys.Notify()
	})
	return nil
}

// Delete removes key. Readers of key see it as absent.
func (s *State) Delete(key string) error {
	if s.readonly {
		getLogger().Warn("reactive: delete on read-only state rejected",
			"code", luxerr.CodeReadOnly, "key", key)
		return ErrReadOnly
	}

	s.mu.Lock()
	_, had := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()

	if !had {
		return nil
	}
	Batch(func() {
		s.registry.Notify(s, key)
		s.keys.Notify()
	})
	return nil
}

// Keys returns the sorted keys and tracks the key set.
func (s *State) Keys() []string {
	s.keys.Track()

	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len returns the number of keys without tracking.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Raw returns a shallow copy of the underlying map without tracking.
// Reactive members are returned as they are.
func (s *State) Raw() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Member returns the stored value of key without unwrapping or tracking.
func (s *State) Member(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Dispose drops every observer of the state.
func (s *State) Dispose() {
	s.registry.Forget(s)
	s.keys.clear()
}
