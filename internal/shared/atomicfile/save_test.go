package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCreatesDirsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "state.json")

	require.NoError(t, Save(path, []byte("one"), 0))
	require.NoError(t, Save(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveRequiresPath(t *testing.T) {
	assert.Error(t, Save("  ", []byte("x"), 0))
}

func TestSaveFailsWhenDirIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	assert.Error(t, Save(filepath.Join(blocker, "state.json"), []byte("x"), 0))
}
