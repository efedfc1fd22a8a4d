package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_LevelsAndAttrs(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "replaying record", "seq", 4)
	log.Info(ctx, "drain finished", "pushed", 2)
	log.Warn(ctx, "remote unreachable")
	log.Error(ctx, "payload corrupt", "entity_id", "n1")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="replaying record"`)
	assert.Contains(t, out, "seq=4")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "pushed=2")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "entity_id=n1")
}

func TestSlogLogger_WithAddsPersistentAttrs(t *testing.T) {
	log, buf := newTestLogger(t)

	child := log.With("component", "sync")
	child.Info(context.Background(), "drain started")

	assert.Contains(t, buf.String(), "component=sync")
}

func TestNewDiscard_DoesNotPanic(t *testing.T) {
	log := NewDiscard()
	log.Info(context.Background(), "dropped", "k", "v")
	log.With("a", 1).Error(context.Background(), "also dropped")
}
