package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
type trackingContext struct {
	// active is the stack of running subscribers. The top of the stack is
	// what reads are attributed to; nil entries suspend tracking.
	active []Subscriber

	// batchDepth tracks nested Batch calls.
	batchDepth int

	// pending accumulates observers to flush when the outermost batch ends.
	pending []*Observer
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns an identifier for the current goroutine, parsed
// from the header of its stack trace ("goroutine <id> ...").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating it on first use.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// releaseTrackingContext drops the context of the current goroutine once it
// holds no state. Goroutines that only ever read reactive values would
// otherwise leave an entry behind.
func releaseTrackingContext() {
	gid := getGoroutineID()
	if v, ok := trackingContexts.Load(gid); ok {
		ctx := v.(*trackingContext)
		if len(ctx.active) == 0 && ctx.batchDepth == 0 && len(ctx.pending) == 0 {
			trackingContexts.Delete(gid)
		}
	}
}

// Active returns the subscriber currently collecting dependencies, or nil.
func Active() Subscriber {
	ctx := getTrackingContext()
	if len(ctx.active) == 0 {
		return nil
	}
	return ctx.active[len(ctx.active)-1]
}

func pushActive(s Subscriber) {
	ctx := getTrackingContext()
	ctx.active = append(ctx.active, s)
}

func popActive() {
	ctx := getTrackingContext()
	ctx.active[len(ctx.active)-1] = nil
	ctx.active = ctx.active[:len(ctx.active)-1]
}

// Untracked runs fn without attributing its reads to the active subscriber.
func Untracked(fn func()) {
	pushActive(nil)
	defer popActive()
	fn()
}
