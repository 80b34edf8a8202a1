package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/livetree/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "livetree.json"

	// DefaultMaxFlushRounds is the default propagation round cap.
	DefaultMaxFlushRounds = 100

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "livetree"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "livetree"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"
)

// DefaultPropertyMirrors are the attributes patched through live properties.
var DefaultPropertyMirrors = []string{"value", "checked", "selected", "indeterminate"}

// Config represents the complete livetree.json configuration.
type Config struct {
	// Reactive configures the propagation scheduler.
	Reactive ReactiveConfig `json:"reactive"`

	// Reconcile configures the tree reconciler.
	Reconcile ReconcileConfig `json:"reconcile"`

	// Log configures structured logging.
	Log LogConfig `json:"log"`

	// Metrics configures Prometheus collectors.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing configures OpenTelemetry spans.
	Tracing TracingConfig `json:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ReactiveConfig contains scheduler settings.
type ReactiveConfig struct {
	// MaxFlushRounds caps the propagation rounds of one flush.
	MaxFlushRounds int `json:"maxFlushRounds,omitempty"`

	// CaptureStacks records the call stack that scheduled each flush so
	// cycle reports can point at the originating write.
	CaptureStacks bool `json:"captureStacks"`
}

// ReconcileConfig contains reconciler settings.
type ReconcileConfig struct {
	// PropertyMirrors lists attributes compared and assigned as live
	// properties instead of serialized attributes.
	PropertyMirrors []string `json:"propertyMirrors,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled turns the collectors on.
	Enabled bool `json:"enabled"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled turns span creation on.
	Enabled bool `json:"enabled"`

	// TracerName is the instrumentation scope name.
	TracerName string `json:"tracerName,omitempty"`

	// Stdout exports spans to standard output (CLI only).
	Stdout bool `json:"stdout"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Reactive: ReactiveConfig{
			MaxFlushRounds: DefaultMaxFlushRounds,
			CaptureStacks:  true,
		},
		Reconcile: ReconcileConfig{
			PropertyMirrors: append([]string(nil), DefaultPropertyMirrors...),
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for livetree.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("LT121").
				WithDetail("No livetree.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'livetree config init' to create one")
		}
		return nil, errors.New("LT120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("LT120").
			WithDetail("Failed to parse livetree.json: " + err.Error()).
			WithSuggestion("Check that livetree.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("LT120").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("LT120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Reactive.MaxFlushRounds == 0 {
		c.Reactive.MaxFlushRounds = DefaultMaxFlushRounds
	}
	if c.Reconcile.PropertyMirrors == nil {
		c.Reconcile.PropertyMirrors = append([]string(nil), DefaultPropertyMirrors...)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Reactive.MaxFlushRounds < 1 {
		return errors.New("LT122").
			WithDetail("reactive.maxFlushRounds must be at least 1, got " + strconv.Itoa(c.Reactive.MaxFlushRounds))
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("LT122").
			WithDetail("log.level must be one of debug, info, warn, error; got " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("LT122").
			WithDetail("log.format must be text or json; got " + strconv.Quote(c.Log.Format))
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing livetree.json, or an error if not found.
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
			return "", errors.New("LT121").
				WithDetail("No livetree.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'livetree config init' to create one")
		}
		dir = parent
	}
}

// LoadOrDefault loads configuration from path when it is set, otherwise
// searches upward from the working directory. A missing file yields the
// defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}
