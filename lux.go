// Package lux mounts reactive component trees on a display surface.
//
// An App owns one surface, one reconciler and one scheduler:
//
//	s := wire.NewSurface()
//	app := lux.New(s, lux.WithLogger(logger))
//	app.Mount(counter)
//
//	go app.Run(ctx)
//	http.ListenAndServe(":3000", wire.Router(s))
//
// State changes made inside Update, or posted with Post, are batched: every
// affected component re-renders and patches once, and a wire surface
// flushes a single frame afterwards.
package lux

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/reconcile"
	"github.com/vango-dev/lux/pkg/surface"
	"github.com/vango-dev/lux/pkg/surface/wire"
	"github.com/vango-dev/lux/pkg/vdom"
)

// flusher is implemented by surfaces that stream their mutations.
type flusher interface {
	Flush() (wire.Frame, bool)
}

// recorder is implemented by surfaces that count their mutations.
type recorder interface {
	Total() int
}

// App is a mounted component tree on a surface.
//
// Mount, Show, Update and Unmount must not be called concurrently with
// each other. Post is safe from any goroutine.
type App struct {
	base    surface.Surface
	surface surface.Surface
	rec     *reconcile.Reconciler
	sched   *reactive.Scheduler
	logger  *slog.Logger
	tracer  trace.Tracer

	mu   sync.Mutex
	root *vdom.Node
}

// New creates an App rendering to s.
func New(s surface.Surface, opts ...Option) *App {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &App{
		base:    s,
		surface: s,
		sched:   reactive.NewScheduler(),
		logger:  cfg.logger,
		tracer:  cfg.tracer,
	}

	recOpts := []reconcile.Option{
		reconcile.WithLogger(cfg.logger),
		reconcile.WithBruteForceThreshold(cfg.threshold),
		reconcile.WithStaticFastPath(cfg.staticFastPath),
	}
	if cfg.metrics != nil {
		a.surface = cfg.metrics.Surface(s)
		recOpts = append(recOpts, reconcile.WithInstrumentation(cfg.metrics))
		reactive.SetInstrumentation(cfg.metrics)
	}
	a.rec = reconcile.New(a.surface, recOpts...)

	// Client events run on the scheduler so they never race the loop.
	if ws, ok := s.(*wire.Surface); ok {
		ws.SetDispatcher(func(e surface.Event) {
			a.Post(func() { ws.Dispatch(e) })
		})
	}
	return a
}

// Reconciler returns the reconciler of the App.
func (a *App) Reconciler() *reconcile.Reconciler {
	return a.rec
}

// Surface returns the surface the App renders to.
func (a *App) Surface() surface.Surface {
	return a.base
}

// Root returns the mounted root node, or nil.
func (a *App) Root() *vdom.Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.root
}

// Mount shows a root instance of def with the given props. A root of the
// same definition keeps its instance and only rebinds the props.
func (a *App) Mount(def *vdom.Definition, props ...any) *vdom.Node {
	n := vdom.Comp(def, props...)
	a.Show(n)
	return n
}

// Show patches the mounted root to n. The first call renders n.
func (a *App) Show(n *vdom.Node) {
	a.Update(context.Background(), func() {
		a.mu.Lock()
		old := a.root
		a.root = n
		a.mu.Unlock()

		if old == nil {
			a.rec.Render(n, a.surface.Root(), 0)
			return
		}
		a.rec.Patch(old, n, a.surface.Root())
	})
}

// Update runs fn inside a batch. Components affected by its writes
// re-render once when fn returns, then a streaming surface is flushed.
// A panic in fn is logged and recorded on the span.
func (a *App) Update(ctx context.Context, fn func()) {
	_, span := a.tracer.Start(ctx, "lux.update", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	before := a.opCount()
	func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("lux: update panicked", "error", r)
				span.SetStatus(codes.Error, "panic")
			}
		}()
		reactive.Batch(fn)
	}()

	if n := a.opCount() - before; n > 0 {
		span.SetAttributes(attribute.Int("lux.ops", n))
	}
	if f, ok := a.flush(); ok {
		span.SetAttributes(
			attribute.String("lux.frame_type", string(f.Type)),
			attribute.Int64("lux.frame_seq", int64(f.Seq)),
		)
	}
}

// Post queues fn to run as an Update on the App loop. It is safe to call
// from any goroutine.
func (a *App) Post(fn func()) reactive.JobID {
	return a.sched.Schedule(reactive.PriorityMedium, func() {
		a.Update(context.Background(), fn)
	})
}

// Cancel removes a posted job that has not run yet.
func (a *App) Cancel(id reactive.JobID) bool {
	return a.sched.Cancel(id)
}

// Flush runs posted jobs on the calling goroutine and returns how many
// ran. It is for callers that do not Run a loop.
func (a *App) Flush() int {
	return a.sched.Flush()
}

// Run runs posted jobs until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.logger.Debug("lux: loop started")
	err := a.sched.Start(ctx)
	a.logger.Debug("lux: loop stopped", "error", err)
	return err
}

// Unmount tears down the mounted root.
func (a *App) Unmount() {
	a.mu.Lock()
	root := a.root
	a.root = nil
	a.mu.Unlock()
	if root == nil {
		return
	}
	a.Update(context.Background(), func() { a.rec.Unmount(root) })
}

func (a *App) opCount() int {
	if r, ok := a.base.(recorder); ok {
		return r.Total()
	}
	return 0
}

func (a *App) flush() (wire.Frame, bool) {
	if f, ok := a.base.(flusher); ok {
		return f.Flush()
	}
	return wire.Frame{}, false
}
