package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/provis-dev/provision/internal/ports"
)

func TestConsoleLogger_WritesLevelAndFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))

	logger.Info(context.Background(), "applying step", ports.F("step", "pacman:install:git"))

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "applying step")
	assert.Contains(t, out, "step=pacman:install:git")
}

func TestConsoleLogger_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithLevel(ports.LevelWarn), WithTimestamp(false))

	logger.Info(context.Background(), "hidden")
	logger.Warn(context.Background(), "visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestConsoleLogger_WithCarriesFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))

	child := logger.With(ports.F("run", "run-1"))
	child.Info(context.Background(), "started")

	assert.Contains(t, buf.String(), "run=run-1")
}

func TestZerologLogger_EmitsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, ports.LevelInfo)

	logger.Info(context.Background(), "applying step", ports.F("step", "pacman:install:git"))

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"step":"pacman:install:git"`)
	assert.Contains(t, out, `"message":"applying step"`)
}

func TestZerologLogger_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, ports.LevelError)

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "also hidden")

	assert.Empty(t, buf.String())
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	t.Parallel()

	logger := NewNopLogger()
	logger.Info(context.Background(), "ignored")
	logger.With(ports.F("k", "v")).Error(context.Background(), "also ignored")
}
