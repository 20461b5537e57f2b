package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	Logger = nil
	assert.NotPanics(t, func() {
		Info("x")
		Debug("x")
		Warn("x")
		Error("x")
	})
}

func TestInitWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn")
	defer func() { Logger = nil }()

	Info("hidden")
	Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
}

func TestInitCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir, "debug"))
	Info("hello")
	Close()
	Logger = nil

	matches, err := filepath.Glob(filepath.Join(dir, "logs", "booklegend-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
