package reactive

import "reflect"

// identical reports whether a and b are the same value: == for comparable
// values, reference identity for slices, maps, channels and pointers.
// Values of different dynamic types are never identical.
func identical(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		// Interface fields holding uncomparable values panic on ==.
		defer func() {
			if recover() != nil {
				same = false
			}
		}()
		return a == b
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	default:
		// Functions and structs holding them.
		return false
	}
}

// deepEqual compares plain data structurally.
func deepEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
