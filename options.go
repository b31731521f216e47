package lux

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/lux/internal/config"
	"github.com/vango-dev/lux/pkg/metrics"
	"github.com/vango-dev/lux/pkg/reconcile"
)

// DefaultTracerName is the tracer used when tracing is enabled without a
// name.
const DefaultTracerName = "lux"

type options struct {
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        *metrics.Metrics
	threshold      int
	staticFastPath bool
}

func defaultOptions() options {
	return options{
		logger:    slog.Default(),
		tracer:    noop.NewTracerProvider().Tracer(""),
		threshold: reconcile.DefaultBruteForceThreshold,
	}
}

// Option configures an App.
type Option func(*options)

// WithLogger sets the logger of the App and its reconciler.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracing traces updates with the named tracer of the global
// OpenTelemetry provider. Configure the provider before calling New.
func WithTracing(name string) Option {
	return func(o *options) {
		if name == "" {
			name = DefaultTracerName
		}
		o.tracer = otel.Tracer(name)
	}
}

// WithTracer traces updates with t.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithMetrics reports reactive and reconciler counters to m, and counts
// surface mutations. It installs m as the process-wide reactive
// instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithBruteForceThreshold sets the largest keyed window matched by
// linear scan.
func WithBruteForceThreshold(n int) Option {
	return func(o *options) { o.threshold = n }
}

// WithStaticFastPath skips patching static subtrees whose fingerprints
// are equal.
func WithStaticFastPath(enabled bool) Option {
	return func(o *options) { o.staticFastPath = enabled }
}

// WithConfig applies the reconcile, log and tracing settings of cfg.
// Logs are written to w. Metrics are not created here since collectors
// register globally; pass them with WithMetrics.
func WithConfig(cfg *config.Config, w io.Writer) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		o.threshold = cfg.Threshold()
		o.staticFastPath = cfg.Reconcile.StaticFastPath
		if w != nil {
			o.logger = cfg.Logger(w)
		}
		if cfg.Tracing.Enabled {
			WithTracing(cfg.Tracing.TracerName)(o)
		}
	}
}
