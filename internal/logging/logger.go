// Package logging provides structured logging for the template engine on top
// of log/slog, with component-scoped child loggers and a no-op logger for
// library callers that do not configure logging.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the structured logging interface used across the engine.
// Arguments follow the slog key/value convention.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	With(args ...interface{}) Logger
	WithComponent(component string) Logger
}

// Config holds logger configuration.
type Config struct {
	Level     string // "debug", "info", "warn", "error"
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns the default logger configuration: info-level text
// output on stderr.
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: "text", Output: os.Stderr}
}

type slogLogger struct {
	logger *slog.Logger
}

// New creates a structured logger. A nil config uses DefaultConfig.
func New(config *Config) Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return &slogLogger{logger: slog.New(handler)}
}

// Nop returns a logger that discards everything. It is the default for
// library components constructed without an explicit logger.
func Nop() Logger {
	return &slogLogger{logger: slog.New(discardHandler{})}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *slogLogger) Debug(msg string, args ...interface{}) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...interface{})  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...interface{})  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...interface{}) { l.logger.Error(msg, args...) }

func (l *slogLogger) With(args ...interface{}) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

func (l *slogLogger) WithComponent(component string) Logger {
	return &slogLogger{logger: l.logger.With("component", component)}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
