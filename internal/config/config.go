package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/dilithium/internal/errors"
	"github.com/vango-dev/dilithium/pkg/snapshot"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "dilithium.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 7070

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultStepInterval is the default delay between scene steps when serving.
	DefaultStepInterval = "1s"

	// DefaultSnapshotDir is the default snapshot output directory.
	DefaultSnapshotDir = "snapshots"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "dilithium"
)

// Config represents the complete dilithium.json configuration.
type Config struct {
	// Log configures the CLI logger.
	Log LogConfig `json:"log,omitempty"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing configures OpenTelemetry pass spans.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Server configures the preview server.
	Server ServerConfig `json:"server,omitempty"`

	// Snapshot configures where rendered output is written.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	configPath string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig configures pass tracing.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// StepInterval is the delay between scene steps, as a Go duration.
	StepInterval string `json:"stepInterval,omitempty"`
}

// SnapshotConfig configures snapshot output.
type SnapshotConfig struct {
	// Dir is the local output directory, used when S3 has no bucket.
	Dir string `json:"dir,omitempty"`

	// Format is html or msgpack.
	Format string `json:"format,omitempty"`

	S3 S3Config `json:"s3,omitempty"`
}

// S3Config configures S3 snapshot uploads.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// New returns a configuration with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			StepInterval: DefaultStepInterval,
		},
		Snapshot: SnapshotConfig{
			Dir:    DefaultSnapshotDir,
			Format: string(snapshot.FormatHTML),
		},
	}
}

// Load reads dilithium.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
		if se, ok := err.(*json.SyntaxError); ok {
			line, col := position(data, se.Offset)
			e = e.WithLocation(path, line, col)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// position converts a byte offset to a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := 1 + strings.Count(string(before), "\n")
	col := int(offset) - strings.LastIndex(string(before), "\n")
	return line, col
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
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
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
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.StepInterval == "" {
		c.Server.StepInterval = DefaultStepInterval
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
	if c.Snapshot.Format == "" {
		c.Snapshot.Format = string(snapshot.FormatHTML)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New("E121").
			WithDetail("Unknown log level " + strconv.Quote(c.Log.Level))
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return errors.New("E121").
			WithDetail("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 1 and 65535, got " + strconv.Itoa(c.Server.Port))
	}
	if d, err := time.ParseDuration(c.Server.StepInterval); err != nil || d <= 0 {
		return errors.New("E122").
			WithDetail("server.stepInterval must be a positive duration, got " + strconv.Quote(c.Server.StepInterval))
	}
	if _, err := snapshot.ParseFormat(c.Snapshot.Format); err != nil {
		return errors.New("E123").Wrap(err)
	}
	if c.Snapshot.S3.Bucket == "" && (c.Snapshot.S3.Prefix != "" || c.Snapshot.S3.Endpoint != "") {
		return errors.New("E123").
			WithDetail("snapshot.s3 sets a prefix or endpoint but no bucket")
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogLevel returns the configured slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	if l, ok := levels[strings.ToLower(c.Log.Level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// NewLogger builds a logger writing to w in the configured format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Address returns the preview server listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// StepDuration returns the parsed step interval, or one second if it is invalid.
func (c *Config) StepDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.StepInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// SnapshotFormat returns the parsed snapshot format, or html if it is invalid.
func (c *Config) SnapshotFormat() snapshot.Format {
	f, err := snapshot.ParseFormat(c.Snapshot.Format)
	if err != nil {
		return snapshot.FormatHTML
	}
	return f
}

// SnapshotLocation returns the location snapshot.Open expects: an
// s3://bucket/prefix URL when a bucket is set, otherwise the snapshot
// directory resolved against the config file's directory.
func (c *Config) SnapshotLocation() string {
	if c.Snapshot.S3.Bucket != "" {
		return "s3://" + c.Snapshot.S3.Bucket + "/" + strings.TrimPrefix(c.Snapshot.S3.Prefix, "/")
	}
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// S3 returns the client settings for S3 snapshot uploads.
func (c *Config) S3() snapshot.S3Config {
	return snapshot.S3Config{
		Bucket:   c.Snapshot.S3.Bucket,
		Prefix:   c.Snapshot.S3.Prefix,
		Region:   c.Snapshot.S3.Region,
		Endpoint: c.Snapshot.S3.Endpoint,
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the directory holding dilithium.json.
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
			return "", errors.New("E141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the nearest dilithium.json above the working
// directory. When there is none it returns defaults.
func LoadFromWorkingDir() (*Config, error) {
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
