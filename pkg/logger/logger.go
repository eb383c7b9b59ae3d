// Package logger provides a tiny namespaced wrapper around log/slog.
//
// Every file that wants to log constructs one package-level logger with
// New("pkg:file") and calls Print/Printf on it. Output only appears when the
// DEBUG environment variable is set, keeping normal runs quiet.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Logger writes namespaced debug lines to stderr, gated by the DEBUG env var.
type Logger struct {
	namespace string
	enabled   bool
}

// New creates a Logger under the given namespace, e.g. "ingest:spawn_binder".
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   os.Getenv("DEBUG") != "",
	}
}

// Print writes a single message at info level, prefixed with the namespace.
func (l *Logger) Print(msg string) {
	if !l.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "%s [INFO] %s\n", l.namespace, msg)
}

// Printf formats and writes a message at info level.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "%s [INFO] %s\n", l.namespace, fmt.Sprintf(format, args...))
}

// Warn writes a warning-level message regardless of DEBUG, marked with the
// combiner's "--!" warning prefix.
func (l *Logger) Warn(msg string) {
	fmt.Fprintf(os.Stderr, "%s [WARN] --! %s\n", l.namespace, msg)
}

// Warnf formats and writes a warning-level message.
func (l *Logger) Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s [WARN] --! %s\n", l.namespace, fmt.Sprintf(format, args...))
}

// NewSlogLoggerWithHandler adapts a Logger into an *slog.Logger whose records
// are rendered through the Logger's own namespace-prefixed format.
func NewSlogLoggerWithHandler(l *Logger) *slog.Logger {
	return slog.New(&namespaceHandler{l: l})
}

type namespaceHandler struct {
	l *Logger
}

func (h *namespaceHandler) Enabled(_ context.Context, _ slog.Level) bool { return h.l.enabled }

func (h *namespaceHandler) Handle(_ context.Context, r slog.Record) error {
	level := "INFO"
	switch {
	case r.Level >= slog.LevelError:
		level = "ERROR"
	case r.Level >= slog.LevelWarn:
		level = "WARN"
	case r.Level < slog.LevelInfo:
		level = "DEBUG"
	}
	fmt.Fprintf(os.Stderr, "%s [%s] %s\n", h.l.namespace, level, r.Message)
	return nil
}

func (h *namespaceHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *namespaceHandler) WithGroup(_ string) slog.Handler      { return h }
