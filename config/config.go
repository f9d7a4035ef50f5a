// Package config loads the service configuration from defaults, an optional
// YAML file and environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	ListenAddr      string        `yaml:"listen_addr"`
	AllowOrigins    []string      `yaml:"allow_origins"`
	BodyLimit       int           `yaml:"body_limit"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TraceExporter selects where spans go: "none", "stdout" or "otlp".
	TraceExporter string `yaml:"trace_exporter"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
	OTLPInsecure  bool   `yaml:"otlp_insecure"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ListenAddr:      ":8000",
		AllowOrigins:    []string{"http://localhost:3000"},
		BodyLimit:       4 * 1024 * 1024,
		LogLevel:        "info",
		LogFormat:       "json",
		MetricsEnabled:  true,
		ShutdownTimeout: 10 * time.Second,
		TraceExporter:   "none",
		OTLPEndpoint:    "localhost:4317",
		OTLPInsecure:    true,
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := cfg.decodeYAML(raw); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}
	if v, ok := lookup("CORS_ALLOW_ORIGINS"); ok {
		c.AllowOrigins = splitList(v)
	}
	if v, ok := lookup("BODY_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: BODY_LIMIT: %w", err)
		}
		c.BodyLimit = n
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := lookup("METRICS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: METRICS_ENABLED: %w", err)
		}
		c.MetricsEnabled = b
	}
	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = d
	}
	if v, ok := lookup("TRACE_EXPORTER"); ok {
		c.TraceExporter = v
	}
	if v, ok := lookup("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
		c.OTLPEndpoint = v
	}
	if v, ok := lookup("OTLP_INSECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: OTLP_INSECURE: %w", err)
		}
		c.OTLPInsecure = b
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("%w: listen_addr is empty", ErrInvalidConfig)
	case c.BodyLimit <= 0:
		return fmt.Errorf("%w: body_limit must be positive, got %d", ErrInvalidConfig, c.BodyLimit)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive, got %s", ErrInvalidConfig, c.ShutdownTimeout)
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.TraceExporter {
	case "none", "stdout":
	case "otlp":
		if c.OTLPEndpoint == "" {
			return fmt.Errorf("%w: otlp_endpoint is empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown trace_exporter %q", ErrInvalidConfig, c.TraceExporter)
	}

	// Credentials are allowed, so a wildcard origin is rejected.
	for _, o := range c.AllowOrigins {
		if o == "*" {
			return fmt.Errorf("%w: allow_origins cannot contain \"*\"", ErrInvalidConfig)
		}
	}
	return nil
}

// Logger returns a slog.Logger writing to w at the configured level and format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, s)
	}
	return level, nil
}
