package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLogLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("bogus"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel(""))
}

func TestCLIHandler_Writes(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	log.Info("evaluated", "count", 3)

	out := buf.String()
	assert.Contains(t, out, "evaluated")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, colorGreen)
}

func TestCLIHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelWarn))

	log.Debug("hidden")
	log.Info("also hidden")
	assert.Empty(t, buf.String())

	log.Warn("careful")
	assert.Contains(t, buf.String(), colorYellow)

	buf.Reset()
	log.Error("boom")
	assert.Contains(t, buf.String(), colorRed)
}

func TestCLIHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo)).With("run", "abc")

	log.Info("done", "n", 1)

	out := buf.String()
	assert.Contains(t, out, "run=abc")
	assert.Contains(t, out, "n=1")
}

func TestCLIHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo)).WithGroup("eval")

	log.Info("started")

	assert.Contains(t, buf.String(), "[eval] started")
}
