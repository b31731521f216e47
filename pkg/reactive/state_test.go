package reactive

import (
	"errors"
	"reflect"
	"testing"
)

func TestStateGetSet(t *testing.T) {
	s := NewState(map[string]any{"count": 0})

	var seen []any
	NewEffect(func() Cleanup {
		seen = append(seen, s.Get("count"))
		return nil
	})

	if err := s.Set("count", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if len(seen) != 2 || seen[1] != 1 {
		t.Errorf("expected [0 1], got %v", seen)
	}
}

func TestStateRoundTripWriteDoesNotNotify(t *testing.T) {
	s := NewState(map[string]any{
		"items": []string{"a", "b"},
		"meta":  map[string]any{"page": 1},
	})

	runs := 0
	NewEffect(func() Cleanup {
		_ = s.Get("items")
		_ = s.Get("meta")
		runs++
		return nil
	})

	if err := s.Set("items", s.Get("items")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("items", []string{"a", "b"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("meta", map[string]any{"page": 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if runs != 1 {
		t.Errorf("deep-equal writes should not notify, got %d runs", runs)
	}

	if err := s.Set("items", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestStateTracksPerKey(t *testing.T) {
	s := NewState(map[string]any{"a": 1, "b": 2})
	runs := 0
	NewEffect(func() Cleanup {
		_ = s.Get("a")
		runs++
		return nil
	})

	s.Set("b", 3)
	if runs != 1 {
		t.Errorf("write to an unread key should not notify, got %d runs", runs)
	}
	s.Set("a", 4)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestStateReadonly(t *testing.T) {
	s := NewReadonlyState(map[string]any{"name": "lux"})

	err := s.Set("name", "other")
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if !errors.Is(err, ErrInvalidMutation) {
		t.Error("ErrReadOnly should match ErrInvalidMutation")
	}
	if err := s.Delete("name"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly from Delete, got %v", err)
	}

	if !reflect.DeepEqual(s.Raw(), map[string]any{"name": "lux"}) {
		t.Errorf("read-only state was modified: %v", s.Raw())
	}
	if !s.Readonly() {
		t.Error("expected Readonly to be true")
	}
}

func TestStateReactiveMembers(t *testing.T) {
	count := NewRef(1)
	double := NewComputed(func() int { return count.Get() * 2 })
	s := NewState(map[string]any{"count": count, "double": double})

	if v := s.Get("count"); v != 1 {
		t.Errorf("expected unwrapped ref value 1, got %v", v)
	}
	if v := s.Get("double"); v != 2 {
		t.Errorf("expected unwrapped computed value 2, got %v", v)
	}

	if err := s.Set("count", 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if count.Peek() != 5 {
		t.Errorf("Set should write through to the ref, got %d", count.Peek())
	}
	if v := s.Get("double"); v != 10 {
		t.Errorf("expected 10, got %v", v)
	}

	if err := s.Set("double", 3); !errors.Is(err, ErrInvalidMutation) {
		t.Errorf("expected ErrInvalidMutation, got %v", err)
	}
	if err := s.Set("count", "five"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if member, _ := s.Member("count"); member != any(count) {
		t.Error("member must still be the ref")
	}
}

func TestStateDeleteNotifies(t *testing.T) {
	s := NewState(map[string]any{"k": "v"})

	var seen []any
	NewEffect(func() Cleanup {
		seen = append(seen, s.Get("k"))
		return nil
	})

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(seen) != 2 || seen[1] != nil {
		t.Errorf("expected [v <nil>], got %v", seen)
	}
	if s.Has("k") {
		t.Error("expected key to be gone")
	}

	if err := s.Delete("k"); err != nil {
		t.Errorf("deleting an absent key: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("deleting an absent key should not notify, got %v", seen)
	}
}

func TestStateKeys(t *testing.T) {
	s := NewState(nil)
	var keys []string
	runs := 0
	NewEffect(func() Cleanup {
		keys = s.Keys()
		runs++
		return nil
	})

	s.Set("b", 1)
	s.Set("a", 2)
	s.Set("a", 3)

	if runs != 3 {
		t.Errorf("expected 3 runs, got %d", runs)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", keys)
	}

	s.Delete("b")
	if !reflect.DeepEqual(keys, []string{"a"}) {
		t.Errorf("expected [a], got %v", keys)
	}
}

func TestStateCustomRegistry(t *testing.T) {
	reg := NewRegistry()
	s := NewState(map[string]any{"x": 1}, WithRegistry(reg))

	e := NewEffect(func() Cleanup {
		_ = s.Get("x")
		return nil
	})
	if reg.Len(s) != 1 {
		t.Fatalf("expected 1 observer in registry, got %d", reg.Len(s))
	}

	s.Dispose()
	if reg.Len(s) != 0 {
		t.Errorf("expected registry to forget the state, got %d", reg.Len(s))
	}
	if Observing(e) != 0 {
		t.Errorf("expected effect edges to be removed, got %d", Observing(e))
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	owner := &struct{ name string }{"owner"}

	reg.Track(owner, "k")
	if reg.Len(owner) != 0 {
		t.Error("untracked read must not create an observer")
	}

	runs := 0
	NewEffect(func() Cleanup {
		reg.Track(owner, "k")
		reg.Track(owner, "j")
		runs++
		return nil
	})

	reg.Notify(owner, "k")
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}

	reg.Remove(owner, "k")
	reg.Notify(owner, "k")
	if runs != 2 {
		t.Errorf("removed key should not notify, got %d runs", runs)
	}
	if reg.Len(owner) != 1 {
		t.Errorf("expected 1 observer, got %d", reg.Len(owner))
	}

	reg.Forget(owner)
	reg.Notify(owner, "j")
	if runs != 2 {
		t.Errorf("forgotten owner should not notify, got %d runs", runs)
	}
}
