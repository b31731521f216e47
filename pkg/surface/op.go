package surface

import (
	"fmt"
	"strconv"
)

// OpKind is the type of a recorded surface mutation.
type OpKind uint8

const (
	OpCreate     OpKind = 0x01 // Create a detached unit
	OpSetAttr    OpKind = 0x02 // Set/update attribute
	OpRemoveAttr OpKind = 0x03 // Remove attribute
	OpInsert     OpKind = 0x04 // Attach a detached unit
	OpMove       OpKind = 0x05 // Re-position an attached unit
	OpRemove     OpKind = 0x06 // Remove unit and subtree
	OpSetText    OpKind = 0x07 // Update text content
	OpListen     OpKind = 0x08 // Register event listener
	OpUnlisten   OpKind = 0x09 // Unregister event listener
)

var opNames = map[OpKind]string{
	OpCreate:     "Create",
	OpSetAttr:    "SetAttr",
	OpRemoveAttr: "RemoveAttr",
	OpInsert:     "Insert",
	OpMove:       "Move",
	OpRemove:     "Remove",
	OpSetText:    "SetText",
	OpListen:     "Listen",
	OpUnlisten:   "Unlisten",
}

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	if name, ok := opNames[k]; ok {
		return name
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k OpKind) MarshalText() ([]byte, error) {
	if _, ok := opNames[k]; !ok {
		return nil, fmt.Errorf("surface: unknown op 0x%02x", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OpKind) UnmarshalText(b []byte) error {
	for kind, name := range opNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("surface: unknown op %q", b)
}

// Op is one recorded surface mutation.
type Op struct {
	Kind   OpKind   `json:"op"`
	Handle Handle   `json:"h"`
	Parent Handle   `json:"parent,omitempty"` // Insert, Move
	Ref    Handle   `json:"ref,omitempty"`    // Insert, Move
	Unit   UnitKind `json:"unit,omitempty"`   // Create
	Name   string   `json:"name,omitempty"`   // attribute or event name
	Value  string   `json:"value,omitempty"`  // tag, text or attribute value
}

// String returns a compact description such as "SetAttr#3 class=on".
func (o Op) String() string {
	h := "#" + strconv.FormatUint(uint64(o.Handle), 10)
	switch o.Kind {
	case OpCreate:
		return fmt.Sprintf("Create%s %s %q", h, o.Unit, o.Value)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr%s %s=%q", h, o.Name, o.Value)
	case OpRemoveAttr, OpListen, OpUnlisten:
		return fmt.Sprintf("%s%s %s", o.Kind, h, o.Name)
	case OpInsert, OpMove:
		return fmt.Sprintf("%s%s parent=%d after=%d", o.Kind, h, o.Parent, o.Ref)
	case OpSetText:
		return fmt.Sprintf("SetText%s %q", h, o.Value)
	default:
		return o.Kind.String() + h
	}
}
