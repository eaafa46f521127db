// Package logger wraps log/slog behind a small interface so components can
// log without knowing where the output goes. The TUI writes to a file, the
// daemon to stderr, tests to a discard sink.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the logging surface used throughout covidash.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Type selects the handler format.
type Type int

const (
	TypeText Type = iota
	TypeJSON
)

// Options configures a Logger.
type Options struct {
	Buffer io.Writer
	Level  Level
	Type   Type
}

// DefaultLogger writes text records to stderr at info level.
var DefaultLogger = New(Options{os.Stderr, DefaultLevel, TypeText})

// Discard drops everything. Components default to it when no logger is given.
var Discard = New(Options{io.Discard, ErrorLevel, TypeText})

type logger struct {
	*slog.Logger
}

// New builds a Logger from opts.
func New(opts Options) Logger {
	if opts.Buffer == nil {
		opts.Buffer = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: levels[opts.Level]}

	var handler slog.Handler
	switch opts.Type {
	case TypeJSON:
		handler = slog.NewJSONHandler(opts.Buffer, handlerOpts)
	case TypeText:
		fallthrough
	default:
		handler = slog.NewTextHandler(opts.Buffer, handlerOpts)
	}
	return &logger{Logger: slog.New(handler)}
}

func (l *logger) With(args ...any) Logger {
	return &logger{Logger: l.Logger.With(args...)}
}

// OpenFile creates (or appends to) a log file, making parent directories as
// needed. The returned closer must be closed by the caller.
func OpenFile(path string, level Level) (Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(Options{Buffer: f, Level: level, Type: TypeText}), f, nil
}

// ParseLevel maps a config string to a Level; unknown names give DefaultLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return DefaultLevel
	}
}
