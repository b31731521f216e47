package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/vango-dev/lux/internal/errors"
)

const (
	// DefaultAddr is the default serve address.
	DefaultAddr = "localhost:3000"

	// DefaultBruteForceThreshold is the default largest keyed window
	// matched by linear scan.
	DefaultBruteForceThreshold = 4

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "lux"
)

// FileNames are the configuration file names, in lookup order.
var FileNames = []string{"lux.json", "lux.yaml", "lux.yml"}

// Config represents the complete lux configuration.
type Config struct {
	// Reconcile contains reconciler settings.
	Reconcile ReconcileConfig `json:"reconcile" yaml:"reconcile"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Serve contains settings of the serve command.
	Serve ServeConfig `json:"serve" yaml:"serve"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ReconcileConfig contains reconciler settings.
type ReconcileConfig struct {
	// BruteForceThreshold is the largest keyed window matched by linear
	// scan. Zero disables the brute force path.
	BruteForceThreshold *int `json:"brute_force_threshold,omitempty" yaml:"brute_force_threshold,omitempty"`

	// StaticFastPath skips static subtrees with equal fingerprints.
	StaticFastPath bool `json:"static_fast_path" yaml:"static_fast_path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	TracerName string `json:"tracer_name,omitempty" yaml:"tracer_name,omitempty"`
}

// ServeConfig contains settings of the serve command.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// MergeFrames sends snapshot merge patches instead of op lists.
	MergeFrames bool `json:"merge_frames" yaml:"merge_frames"`

	// AllowedOrigins lists the origins besides the serving host that may
	// open the websocket. "*" allows any origin.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

// New creates a new config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Reconcile.BruteForceThreshold == nil {
		n := DefaultBruteForceThreshold
		c.Reconcile.BruteForceThreshold = &n
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "lux"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
}

// Load reads configuration from the specified directory.
// It looks for the first of FileNames in the directory.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No lux.json or lux.yaml found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New(errors.CodeConfigRead).Wrap(err).WithSource(path)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSource(path)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or
// JSON following the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = c.YAML()
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigRead).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigRead).Wrap(err).WithSource(path)
	}

	c.configPath = path
	return nil
}

// YAML returns the configuration encoded as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if n := c.Reconcile.BruteForceThreshold; n != nil && *n < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("reconcile.brute_force_threshold must not be negative, got " + strconv.Itoa(*n))
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.level must be debug, info, warn or error, got " + strconv.Quote(c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("metrics.namespace is required when metrics are enabled")
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Threshold returns the configured brute force threshold.
func (c *Config) Threshold() int {
	if c.Reconcile.BruteForceThreshold == nil {
		return DefaultBruteForceThreshold
	}
	return *c.Reconcile.BruteForceThreshold
}

// Logger builds a logger writing to w per the log settings.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levels[strings.ToLower(c.Log.Level)]}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a configuration file, or an error if
// not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetail("No lux.json or lux.yaml found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its parents. Without a file it returns the defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.CodeOf(err) == errors.CodeConfigNotFound {
			return New(), nil
		}
		return nil, err
	}

	return Load(root)
}
