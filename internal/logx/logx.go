// Package logx provides the slog-backed implementation of the foundry logger.
//
// Overview:
//   - Responsibility: logfmt output with sorted fields and optional level colorization
//   - Key Types: Logger (implements log.Logger), Handler (implements slog.Handler)
//   - Concurrency Model: All loggers are safe for concurrent use
//   - Error Semantics: No errors returned; write failures are dropped
//   - Performance Notes: One buffer per record, fields sorted for stable diffs
//
// Usage:
//
//	logger := logx.New(logx.WithLevel(slog.LevelDebug), logx.WithWriter(os.Stderr))
//	logger.Info("phase complete", "phase", "common", "files", 12)
package logx

import (
	"io"
	"log/slog"
	"os"

	"go.eggybyte.com/foundry/internal/core/log"
)

// Options configures the logger behavior.
type Options struct {
	Level            slog.Level // Minimum log level
	Color            bool       // Colorize the level field only
	Writer           io.Writer  // Output writer (default: os.Stderr)
	DisableTimestamp bool       // Omit the time field
}

// Option configures logger behavior.
type Option func(*Options)

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Level = level
	}
}

// WithColor enables colorization for the level field only.
func WithColor(enabled bool) Option {
	return func(o *Options) {
		o.Color = enabled
	}
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.Writer = w
	}
}

// Logger implements log.Logger on top of Handler.
type Logger struct {
	handler *Handler
	attrs   []slog.Attr
}

// New creates a new Logger with the given options.
// Defaults: info level, no color, stderr, no timestamp.
func New(opts ...Option) log.Logger {
	options := Options{
		Level:            slog.LevelInfo,
		Writer:           os.Stderr,
		DisableTimestamp: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Writer == nil {
		options.Writer = os.Stderr
	}

	return &Logger{handler: NewHandler(options)}
}

// With returns a new Logger with the given key-value pairs attached.
func (l *Logger) With(kv ...any) log.Logger {
	attrs := append([]slog.Attr{}, l.attrs...)
	attrs = append(attrs, KVToAttrs(kv)...)
	return &Logger{
		handler: l.handler,
		attrs:   attrs,
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, kv ...any) {
	l.log(slog.LevelDebug, msg, KVToAttrs(kv))
}

// Info logs an informational message.
func (l *Logger) Info(msg string, kv ...any) {
	l.log(slog.LevelInfo, msg, KVToAttrs(kv))
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, kv ...any) {
	l.log(slog.LevelWarn, msg, KVToAttrs(kv))
}

// Error logs an error message. The error is recorded under the "error" key.
func (l *Logger) Error(err error, msg string, kv ...any) {
	attrs := KVToAttrs(kv)
	if err != nil {
		attrs = append([]slog.Attr{slog.Any("error", err)}, attrs...)
	}
	l.log(slog.LevelError, msg, attrs)
}

func (l *Logger) log(level slog.Level, msg string, attrs []slog.Attr) {
	all := append([]slog.Attr{}, l.attrs...)
	all = append(all, attrs...)
	l.handler.LogRecord(level, msg, all)
}
