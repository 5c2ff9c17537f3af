package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitDefaultLoggerIn(dir, "test"))

	Debug("debug %d", 1)
	Info("info %s", "ok")
	CloseDefaultLogger()

	files, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] [test] debug 1")
	assert.Contains(t, string(data), "[INFO] [test] info ok")
}

func TestLoggingWithoutInitDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Trace("trace")
		Warn("warn %v", 42)
		GetZoneLogger().Error("component %s", "zone")
	})
}

func TestManagerReusesComponentLoggers(t *testing.T) {
	lm := GetLoggerManager()
	a := lm.MustGetLogger("reuse")
	b := lm.MustGetLogger("reuse")
	assert.Same(t, a, b)
	assert.Contains(t, lm.ListComponents(), "reuse")
	require.NoError(t, lm.SetLogLevel("reuse", ERROR, ERROR))
	assert.Error(t, lm.SetLogLevel("unknown-component", ERROR, ERROR))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("whatever"))
}
