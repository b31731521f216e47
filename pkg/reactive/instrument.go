package reactive

import (
	"log/slog"
	"sync/atomic"
)

// Instrumentation receives counters from the reactive graph.
// Implementations must be cheap and safe for concurrent use.
type Instrumentation interface {
	// Notified is called once per observer flush with the number of
	// subscribers that were activated.
	Notified(activated int)

	// Ran is called after every subscriber run. kind is "computed",
	// "effect" or "watch"; ok is false when the run panicked.
	Ran(kind string, ok bool)
}

type noopInstrumentation struct{}

func (noopInstrumentation) Notified(int)     {}
func (noopInstrumentation) Ran(string, bool) {}

type instrumentationHolder struct{ Instrumentation }

var (
	instrumentation atomic.Pointer[instrumentationHolder]
	logger          atomic.Pointer[slog.Logger]
)

func init() {
	instrumentation.Store(&instrumentationHolder{noopInstrumentation{}})
}

// SetInstrumentation installs the counters sink. nil restores the no-op sink.
func SetInstrumentation(i Instrumentation) {
	if i == nil {
		i = noopInstrumentation{}
	}
	instrumentation.Store(&instrumentationHolder{i})
}

func instr() Instrumentation {
	return instrumentation.Load().Instrumentation
}

// SetLogger sets the logger used for rejected writes and subscriber failures.
// nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func getLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
