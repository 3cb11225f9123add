// Package observability provides structured logging for execprobe.
package observability

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/m-mizutani/masq"

	"github.com/jmylchreest/execprobe/internal/config"
)

// redactedKeys are attribute names whose values are always masked.
var redactedKeys = []string{"api_key", "apikey", "X-API-Key"}

// NewLogger creates a new slog.Logger writing to stderr.
func NewLogger(cfg config.LoggingConfig, secrets ...string) *slog.Logger {
	return NewLoggerWithWriter(cfg, os.Stderr, secrets...)
}

// NewLoggerWithWriter creates a new slog.Logger that writes to the provided writer.
// Supported formats are json, text and pretty (coloured, human oriented).
// Any string attribute containing one of secrets is masked.
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer, secrets ...string) *slog.Logger {
	level := parseLevel(cfg.Level)
	redact := newRedactor(secrets)

	if cfg.Format == "pretty" {
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = time.Kitchen
		}
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:       level,
			AddSource:   cfg.AddSource,
			TimeFormat:  timeFormat,
			ReplaceAttr: redact,
		}))
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return redact(groups, a)
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func newRedactor(secrets []string) func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(redactedKeys)+len(secrets))
	for _, k := range redactedKeys {
		opts = append(opts, masq.WithFieldName(k))
	}
	for _, s := range secrets {
		if s != "" {
			opts = append(opts, masq.WithContain(s))
		}
	}
	return masq.New(opts...)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent adds a component name to the logger for identifying the source.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

// WithRunID tags every record with the id of the current probe run.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String("run_id", runID))
}

// WithRequestID adds a request ID to the logger.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String("request_id", requestID))
}

// SetDefault sets the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
