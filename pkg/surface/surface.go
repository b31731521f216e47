package surface

import "fmt"

// Handle identifies a display unit. The zero Handle means "no unit".
type Handle uint64

// UnitKind is the type of a display unit.
type UnitKind uint8

const (
	UnitElement UnitKind = iota + 1
	UnitText
	UnitComment
)

// String returns the string representation of the UnitKind.
func (k UnitKind) String() string {
	switch k {
	case UnitElement:
		return "element"
	case UnitText:
		return "text"
	case UnitComment:
		return "comment"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k UnitKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *UnitKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "element":
		*k = UnitElement
	case "text":
		*k = UnitText
	case "comment":
		*k = UnitComment
	default:
		return fmt.Errorf("surface: unknown unit kind %q", b)
	}
	return nil
}

// Event is delivered to listeners.
type Event struct {
	Type   string         `json:"type"`
	Target Handle         `json:"target"`
	Value  string         `json:"value,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

// Listener handles an event raised on a unit.
type Listener func(Event)

// Surface is a tree of display units.
//
// Handles passed to a Surface must have been returned by its CreateUnit.
// Inserting a unit that is already attached moves it.
type Surface interface {
	// Root returns the unit everything is mounted under.
	Root() Handle

	// CreateUnit creates a detached unit. data is the tag name of an
	// element, or the content of a text or comment unit.
	CreateUnit(kind UnitKind, data string) Handle

	SetAttribute(h Handle, name, value string)
	RemoveAttribute(h Handle, name string)

	// InsertAfter places h as a child of parent right after ref. A zero
	// ref places h first.
	InsertAfter(parent, ref, h Handle)

	// RemoveUnit detaches h and discards it with its subtree.
	RemoveUnit(h Handle)

	SetTextContent(h Handle, text string)

	// Listen registers fn for events of the given type on h, replacing
	// any previous listener for that type.
	Listen(h Handle, event string, fn Listener)
	Unlisten(h Handle, event string)
}
