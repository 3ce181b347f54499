// Package logging configures zerolog for the lookup service and defines the
// field names shared by its components.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is stamped on every line written through Setup.
const ServiceName = "glp-lookup"

// Field names used across components.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldFlow      = "flow"
	FieldRequestID = "request_id"
)

// LogLevel is a user-facing level name (LOG_LEVEL).
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to console output.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON output at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs the global logger and returns it. Component loggers created
// afterwards with NewLogger inherit its output and service field.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str(FieldService, ServiceName).
		Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to zerolog; unknown names fall back to info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a component logger from the global logger.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str(FieldComponent, component).Logger()
}

// RunLogger tags base with a lookup run's id and flow.
func RunLogger(base zerolog.Logger, runID, flow string) zerolog.Logger {
	return base.With().
		Str(FieldRunID, runID).
		Str(FieldFlow, flow).
		Logger()
}

// Levels:
//
// Debug: batch start/finish, cache hit/miss, page failures inside a key.
// Info: run start/finish with counts, consumer cancellation, HTTP requests,
// server startup/shutdown.
// Warn: upstream errors that demote a batch or key to missing, auth aborts,
// retries, cache errors.
// Error: 5xx responses, encoding failures, startup failures.
