package reactive

import (
	"errors"
	"fmt"
)

// ErrInvalidMutation is returned when a write targets a derived value.
var ErrInvalidMutation = errors.New("reactive: invalid mutation")

// ErrReadOnly is returned by Set and Delete on a read-only State.
// errors.Is(ErrReadOnly, ErrInvalidMutation) holds.
var ErrReadOnly = fmt.Errorf("%w: state is read-only", ErrInvalidMutation)

// ErrSubscriberRun marks a recovered panic inside a subscriber function.
var ErrSubscriberRun = errors.New("reactive: subscriber run failed")

// ErrTypeMismatch is returned when a type-erased write cannot be stored in a Ref.
var ErrTypeMismatch = errors.New("reactive: value type does not match ref")
