package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", "json")
	require.NoError(t, err)

	l.Debug("sharing snapshot", "snapshot", "snap-1")

	assert.Contains(t, buf.String(), `"msg":"sharing snapshot"`)
	assert.Contains(t, buf.String(), `"snapshot":"snap-1"`)
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn", "text")
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewDefaults(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "", "")
	assert.NoError(t, err)
}

func TestNewRejectsUnknownValues(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "text")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = Discard()
}
