// Package logging configures the process-wide slog logger.
//
// Records are rendered by tint for humans and routed through slog-context so
// attributes added to a context with slogctx.With appear on every record
// logged with that context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// TimeFormat is the timestamp layout of console records.
const TimeFormat = time.TimeOnly

// ParseLevel converts "debug", "info", "warn" or "error" (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds a logger writing to w. It does not touch the slog default.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: TimeFormat,
		AddSource:  level <= slog.LevelDebug,
		NoColor:    !color,
	})
	return slog.New(slogctx.NewHandler(h, nil))
}

// Setup installs a logger writing to w as the slog default and returns a context
// carrying it.
func Setup(ctx context.Context, w io.Writer, level string, color bool) (context.Context, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return ctx, err
	}
	logger := New(w, lvl, color)
	slog.SetDefault(logger)
	return slogctx.NewCtx(ctx, logger), nil
}

// FromContext returns the logger stored in ctx, or the slog default.
func FromContext(ctx context.Context) *slog.Logger {
	return slogctx.FromCtx(ctx)
}

// With returns a context whose records carry args.
func With(ctx context.Context, args ...any) context.Context {
	return slogctx.With(ctx, args...)
}

// Discard returns a logger that drops every record. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Err wraps err as a log attribute rendered in the error color.
func Err(err error) slog.Attr {
	return tint.Err(err)
}
