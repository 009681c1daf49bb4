package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	slogctx "github.com/veqryn/slog-context"
)

// Test Plan for logging:
// - ParseLevel accepts known names in any case and rejects others
// - New filters below the level and renders without color codes when asked
// - Context attributes added with With appear on records logged via FromContext
// - Setup installs the default logger and fails on unknown levels

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNew_FiltersAndRendersPlain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, false)

	logger.Debug("hidden")
	logger.Info("tree built", "declarations", 12)
	logger.Warn("castxml failed", Err(errors.New("exit status 1")))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "tree built")
	assert.Contains(t, out, "declarations=12")
	assert.Contains(t, out, "exit status 1")
	assert.NotContains(t, out, "\x1b[")
}

func TestWith_AddsContextAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := context.Background()
	ctx = With(slogctx.NewCtx(ctx, New(&buf, slog.LevelDebug, false)), "session", "abc")

	FromContext(ctx).Info("loaded")
	assert.Contains(t, buf.String(), "session=abc")
}

func TestSetup(t *testing.T) {
	// Not parallel: replaces the slog default.
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	ctx, err := Setup(context.Background(), &buf, "warn", false)
	require.NoError(t, err)

	slog.Info("quiet")
	FromContext(ctx).Error("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")

	_, err = Setup(context.Background(), &buf, "verbose", false)
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
