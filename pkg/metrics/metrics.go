// Package metrics exports Prometheus metrics for the reactive graph, the
// reconciler and the display surface.
//
//	m := metrics.New(metrics.WithNamespace("myapp"))
//	reactive.SetInstrumentation(m)
//	r := reconcile.New(m.Surface(mem), reconcile.WithInstrumentation(m))
//
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "lux").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for patch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "lux",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors. It implements reactive.Instrumentation
// and reconcile.Instrumentation.
type Metrics struct {
	notifications prometheus.Counter
	runs          *prometheus.CounterVec
	patches       prometheus.Histogram
	moves         prometheus.Counter
	duplicateKeys prometheus.Counter
	surfaceOps    *prometheus.CounterVec
}

// New registers the collectors.
//
// Metrics collected:
//   - lux_notified_subscribers_total: subscribers activated by notifications
//   - lux_subscriber_runs_total: subscriber runs by kind and status
//   - lux_patch_duration_seconds: duration of patch passes
//   - lux_keyed_moves_total: keyed nodes moved
//   - lux_duplicate_keys_total: duplicate keys found in keyed lists
//   - lux_surface_ops_total: surface mutations by op
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notified_subscribers_total",
			Help:        "Total number of subscribers activated by notifications",
			ConstLabels: config.ConstLabels,
		}),

		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriber_runs_total",
			Help:        "Total number of subscriber runs",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		patches: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patch_duration_seconds",
			Help:        "Patch pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		moves: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "keyed_moves_total",
			Help:        "Total number of keyed nodes moved",
			ConstLabels: config.ConstLabels,
		}),

		duplicateKeys: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "duplicate_keys_total",
			Help:        "Total number of duplicate keys found in keyed lists",
			ConstLabels: config.ConstLabels,
		}),

		surfaceOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "surface_ops_total",
			Help:        "Total number of surface mutations by op",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
	}
}

// Notified implements reactive.Instrumentation.
func (m *Metrics) Notified(activated int) {
	m.notifications.Add(float64(activated))
}

// Ran implements reactive.Instrumentation.
func (m *Metrics) Ran(kind string, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.runs.WithLabelValues(kind, status).Inc()
}

// Patched implements reconcile.Instrumentation.
func (m *Metrics) Patched(d time.Duration) {
	m.patches.Observe(d.Seconds())
}

// Moved implements reconcile.Instrumentation.
func (m *Metrics) Moved() {
	m.moves.Inc()
}

// DuplicateKey implements reconcile.Instrumentation.
func (m *Metrics) DuplicateKey() {
	m.duplicateKeys.Inc()
}
