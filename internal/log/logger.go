package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Field keys shared by the converters and the CLI.
const (
	StreamKey = "stream"
	ParentKey = "parent"
	ReasonKey = "reason"
)

// Config holds the logging configuration.
type Config struct {
	// Level is one of debug, info, warn, error. Default: warn.
	Level string

	// Format is text or json. Default: text.
	Format Format

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the CLI defaults: quiet text output on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: FormatText,
		Output: os.Stderr,
	}
}

// FromEnv overlays CONNECTOR_BUILDER_LOG_LEVEL and
// CONNECTOR_BUILDER_LOG_FORMAT onto cfg.
func FromEnv(cfg Config) Config {
	if level := os.Getenv("CONNECTOR_BUILDER_LOG_LEVEL"); level != "" {
		cfg.Level = strings.ToLower(level)
	}
	if format := os.Getenv("CONNECTOR_BUILDER_LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}
	return cfg
}

// New builds a logger from cfg. Unknown levels and formats are errors so a
// mistyped flag does not silently change output.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case FormatText, "":
		return slog.New(slog.NewTextHandler(out, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	default:
		return nil, fmt.Errorf("log: unsupported format %q", cfg.Format)
	}
}

// ParseLevel maps a level name to a slog.Level. An empty name is warn.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log: unsupported level %q", raw)
	}
}
