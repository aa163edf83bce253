package fsprobe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeMissingDir(t *testing.T) {
	res := Probe(filepath.Join(t.TempDir(), "absent"), 0)
	assert.False(t, res.FsnotifySupported)
	assert.Contains(t, res.Reason, "stat failed")
}

func TestProbeFileIsNotDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	res := Probe(path, 0)
	assert.False(t, res.FsnotifySupported)
	assert.Contains(t, res.Reason, "not a directory")
}

func TestProbeCleansUp(t *testing.T) {
	dir := t.TempDir()
	res := Probe(dir, 0)
	if !res.FsnotifySupported {
		t.Logf("fsnotify unsupported here: %s", res.Reason)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
