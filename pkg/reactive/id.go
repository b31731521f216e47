package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for subscribers and observers.
var globalIDCounter uint64

// nextID returns the next unique ID. IDs are never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// clock orders writes and subscriber runs. A subscriber whose run started
// after a change was stamped has already seen that change.
var clock uint64

// tick returns a new timestamp.
func tick() uint64 {
	return atomic.AddUint64(&clock, 1)
}
