// Package log provides helpers for creating a configured slog.Logger.
//
// When a log file path is not provided, logs are written to stdout for
// non-error levels and to stderr for errors. A run that streams its artifact
// to stdout keeps every level on stderr instead.
package log

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
)

// LevelTrace defines a custom slog level below Debug for very verbose output.
const LevelTrace slog.Level = -8

var levelNames = map[string]slog.Level{
	"trace": LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a --log.level value to its slog level. Unknown names
// fall back to info.
func ParseLevel(s string) slog.Level {
	if l, ok := levelNames[s]; ok {
		return l
	}
	return slog.LevelInfo
}

// MultiHandler fans out records to every handler that accepts their level.
type MultiHandler []slog.Handler

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r)
		}
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m MultiHandler) each(fn func(slog.Handler) slog.Handler) MultiHandler {
	out := make(MultiHandler, len(m))
	for i, h := range m {
		out[i] = fn(h)
	}
	return out
}

// NoLimit is the upper bound of a filter that passes every level above Min.
const NoLimit slog.Level = math.MaxInt

// LevelFilter passes records in [Min, Max) on to its handler.
type LevelFilter struct {
	Min, Max slog.Level
	h        slog.Handler
}

// Filter wraps h so that it only sees levels in [lo, hi).
func Filter(h slog.Handler, lo, hi slog.Level) LevelFilter {
	return LevelFilter{Min: lo, Max: hi, h: h}
}

func (f LevelFilter) pass(l slog.Level) bool { return l >= f.Min && l < f.Max }

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.pass(level) && f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{Min: f.Min, Max: f.Max, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{Min: f.Min, Max: f.Max, h: f.h.WithGroup(name)}
}

// Console is where SetupLogger writes when no log file is given.
type Console struct {
	Stdout io.Writer
	Stderr io.Writer
}

// StdConsole splits output between the process streams. With artifactOnStdout
// set, stdout is left to the artifact and every level goes to stderr.
func StdConsole(artifactOnStdout bool) Console {
	if artifactOnStdout {
		return Console{Stdout: os.Stderr, Stderr: os.Stderr}
	}
	return Console{Stdout: os.Stdout, Stderr: os.Stderr}
}

// SetupLogger builds a slog.Logger with console and optional file handlers.
// With a file, the console only carries warnings and errors; the file gets
// everything at or above logLevel.
func SetupLogger(logLevel, logFile string, console Console) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)
	text := func(w io.Writer) slog.Handler {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: LevelTrace})
	}

	if logFile == "" {
		return slog.New(MultiHandler{
			Filter(text(console.Stdout), level, slog.LevelError),
			Filter(text(console.Stderr), max(level, slog.LevelError), NoLimit),
		}), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(MultiHandler{
		Filter(text(console.Stderr), max(level, slog.LevelWarn), NoLimit),
		Filter(text(f), level, NoLimit),
	}), []io.Closer{f}, nil
}
