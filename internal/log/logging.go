// Package log provides helpers for creating a configured slog.Logger
// for the daemon. Logs go to standard output for levels below error
// and standard error for errors, so operators can keep
// stdout for status and redirect stderr separately ("Shared
// resources").
//
// The daemon never writes configuration or logs to disk, so there is
// no log-file sink here; the level-filtering multi-handler plumbing
// and the LevelTrace level below slog.LevelDebug back the
// --verbose=raw case.
package log

import (
	"context"
	"log/slog"
	"os"
)

// LevelTrace is a custom slog level below Debug used for raw-protocol
// hex dumps of every HID report transacted with a device
// (--verbose=raw).
const LevelTrace slog.Level = -8

// ParseLevel maps the daemon's --quiet/--verbose vocabulary onto a
// slog.Level.
func ParseLevel(s string) slog.Level {
	switch s {
	case "raw", "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "quiet", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}
func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		_ = h.Handle(ctx, r)
	}
	return nil
}
func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}
func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter delegates to an underlying handler but filters which
// levels are passed to it using the provided predicate.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if !f.pass(level) {
		return false
	}
	return f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}
func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

// SetupLogger builds a slog.Logger that splits output between stdout
// (below error) and stderr (error and above), both gated by level.
func SetupLogger(verbosity string) *slog.Logger {
	level := ParseLevel(verbosity)

	stdoutHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})

	handlers := []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: stdoutHandler},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: stderrHandler},
	}
	return slog.New(MultiHandler{hs: handlers})
}
