package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogsOutput(t *testing.T) {
	defer SetLogsOutput(os.Stderr)
	defer SetLevel(zapcore.InfoLevel)

	var buf bytes.Buffer
	SetLogsOutput(&buf)
	Debug("hidden")
	Info("Completed", zap.Int("columns", 4))
	Warn("high condition number")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "regression")
	assert.Contains(t, out, `{"columns": 4}`)
	assert.Contains(t, out, "WARN")

	buf.Reset()
	SetLevel(zapcore.DebugLevel)
	Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetLogger(t *testing.T) {
	defer SetLogsOutput(os.Stderr)

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	Err("singular matrix", zap.Strings("columns", []string{"Pulse1", "Half"}))

	entries := logs.FilterMessage("singular matrix").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, []interface{}{"Pulse1", "Half"}, entries[0].ContextMap()["columns"])
	}

	SetLogger(nil)
	assert.NotPanics(t, func() { Info("dropped") })
}
