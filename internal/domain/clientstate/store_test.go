package clientstate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPopulatedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil)
	require.NoError(t, s.Set(ScopeGlobal, "panes", map[string]interface{}{"left": "console"}))
	require.NoError(t, s.Set(ScopeGlobal, "theme", "dark"))
	require.NoError(t, s.Set(ScopeProject, "open-docs", []interface{}{"a.R", "b.R"}))
	return s
}

func TestCommitAllWritesBothScopes(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global")
	project := filepath.Join(dir, "project")

	s := newPopulatedStore(t)
	require.NoError(t, s.Commit(CommitAll, global, project))

	data, err := os.ReadFile(filepath.Join(global, "theme.json"))
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(data))
	assert.FileExists(t, filepath.Join(global, "panes.json"))
	assert.FileExists(t, filepath.Join(project, "open-docs.json"))
}

func TestCommitProjectOnly(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global")
	project := filepath.Join(dir, "project")

	s := newPopulatedStore(t)
	require.NoError(t, s.Commit(CommitProjectOnly, global, project))

	assert.NoDirExists(t, global)
	assert.FileExists(t, filepath.Join(project, "open-docs.json"))
}

func TestCommitIsNotTransactional(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	project := filepath.Join(dir, "project")

	s := newPopulatedStore(t)
	err := s.Commit(CommitAll, filepath.Join(blocker, "global"), project)
	require.Error(t, err)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, ScopeGlobal, writeErr.Scope)

	// project scope still written
	assert.FileExists(t, filepath.Join(project, "open-docs.json"))
}

func TestCommitReportsEachFailure(t *testing.T) {
	s := newPopulatedStore(t)
	err := s.Commit(CommitAll, "", "")
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 2)
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global")
	project := filepath.Join(dir, "project")
	require.NoError(t, newPopulatedStore(t).Commit(CommitAll, global, project))
	require.NoError(t, os.WriteFile(filepath.Join(global, "broken.json"), []byte("{"), 0o600))

	fresh := NewStore(nil)
	require.NoError(t, fresh.Load(ScopeGlobal, global))
	require.NoError(t, fresh.Load(ScopeProject, project))

	theme, ok := fresh.Get(ScopeGlobal, "theme")
	require.True(t, ok)
	assert.Equal(t, "dark", theme)
	assert.Equal(t, 2, fresh.Len(ScopeGlobal), "unreadable entries are skipped")
	assert.Equal(t, 1, fresh.Len(ScopeProject))
}

func TestLoadMissingDir(t *testing.T) {
	s := NewStore(nil)
	assert.NoError(t, s.Load(ScopeGlobal, filepath.Join(t.TempDir(), "nope")))
}

func TestSetRejectsBadKeys(t *testing.T) {
	s := NewStore(nil)
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, s.Set(ScopeGlobal, key, 1), key)
	}
}
