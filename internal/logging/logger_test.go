package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetupWriter(&buf, level, "json")
	t.Cleanup(func() { Setup("info", "text") })
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestFromContext_AddsRequestAndRunID(t *testing.T) {
	buf := captureJSON(t, "info")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ctx = ContextWithRunID(ctx, "run-7")
	FromContext(ctx).Info("source read")

	entry := decode(t, buf)
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "run-7", entry["run_id"])
	assert.Equal(t, "run-7", RunIDFromContext(ctx))
}

func TestFromContext_Plain(t *testing.T) {
	buf := captureJSON(t, "info")

	FromContext(context.Background()).Info("hello")

	entry := decode(t, buf)
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "run_id")
	assert.Empty(t, RunIDFromContext(context.Background()))
}

func TestWithFields(t *testing.T) {
	buf := captureJSON(t, "info")

	WithFields(context.Background(), "source", "life").Info("read")

	assert.Equal(t, "life", decode(t, buf)["source"])
}

func TestSetup_Level(t *testing.T) {
	buf := captureJSON(t, "warn")

	slog.Info("dropped")
	assert.Zero(t, buf.Len())

	slog.Warn("kept")
	assert.Equal(t, "kept", decode(t, buf)["msg"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
