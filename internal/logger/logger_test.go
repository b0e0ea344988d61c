package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseToggle(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbose(false)

	SetVerbose(false)
	Debug("hidden %d", 1)
	Info("hidden")
	Warn("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	assert.True(t, IsVerbose())
	Debug("shown %d", 1)
	Info("shown")
	Warn("shown")
	assert.Contains(t, buf.String(), "[DEBUG] shown 1")
	assert.Contains(t, buf.String(), "[INFO] shown")
	assert.Contains(t, buf.String(), "[WARN] shown")
}

func TestErrorAlwaysPrinted(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Error("boom: %s", "disk")
	assert.Contains(t, buf.String(), "[ERROR] boom: disk")
}
