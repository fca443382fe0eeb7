package sessionstate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/runtime"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

type recordingReporter struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingReporter) ReportWarning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type envRecorder struct {
	mu   sync.Mutex
	vars map[string]string
}

func (e *envRecorder) setenv(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	e.vars[key] = value
	return nil
}

func newWorkspace(version string) *runtime.Workspace {
	return runtime.NewWorkspace(types.MustParseVersion(version), nil)
}

func populated(version string) *runtime.Workspace {
	ws := newWorkspace(version)
	ws.Set("x", "42")
	ws.Set("model", "lm(y ~ x)")
	_ = ws.AttachPackages(context.Background(), []string{"dplyr", "ggplot2"})
	ws.Draw([]byte("plot-bytes"))
	return ws
}

func newStore(rt Runtime, opts Options) *Store {
	if opts.Environ == nil {
		opts.Environ = func() []string { return nil }
	}
	if opts.Setenv == nil {
		opts.Setenv = func(string, string) error { return nil }
	}
	return NewStore(rt, opts)
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		compression string
		disable     bool
		file        string
	}{
		{name: "zstd", compression: CompressionZstd, file: "environment.zst"},
		{name: "gzip", compression: CompressionGzip, file: "environment.gz"},
		{name: "compression disabled", compression: CompressionZstd, disable: true, file: "environment.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			dir := filepath.Join(t.TempDir(), "state")

			src := newStore(populated("4.4.0"), Options{Compression: tt.compression})
			require.NoError(t, src.Save(ctx, dir, SaveParams{
				SaveGlobalEnvironment: true,
				DisableCompression:    tt.disable,
			}))
			assert.FileExists(t, filepath.Join(dir, tt.file))
			assert.FileExists(t, filepath.Join(dir, metadataFile))
			assert.True(t, src.Exists(dir))

			dst := newWorkspace("4.4.0")
			result, err := newStore(dst, Options{Compression: tt.compression}).Restore(ctx, dir, false)
			require.NoError(t, err)
			assert.Empty(t, result.ErrorMessages)
			assert.Nil(t, result.Deferred)

			v, ok := dst.Get("x")
			require.True(t, ok)
			assert.Equal(t, "42", v)
			assert.Equal(t, []string{"model", "x"}, dst.Names())
			assert.Equal(t, []string{"dplyr", "ggplot2"}, dst.Packages())

			graphics, err := dst.GraphicsState()
			require.NoError(t, err)
			assert.Equal(t, []byte("plot-bytes"), graphics)
		})
	}
}

func TestSaveWithoutGlobalEnvironment(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, newStore(populated("4.4.0"), Options{}).Save(ctx, dir, SaveParams{}))

	matches, err := filepath.Glob(filepath.Join(dir, environmentBase+".*"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	dst := newWorkspace("4.4.0")
	_, err = newStore(dst, Options{}).Restore(ctx, dir, false)
	require.NoError(t, err)
	assert.Empty(t, dst.Names())
	assert.Equal(t, []string{"dplyr", "ggplot2"}, dst.Packages())
}

func TestSaveExcludePackages(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, newStore(populated("4.4.0"), Options{}).Save(ctx, dir, SaveParams{ExcludePackages: true}))
	assert.NoFileExists(t, filepath.Join(dir, packagesFile))

	dst := newWorkspace("4.4.0")
	_, err := newStore(dst, Options{}).Restore(ctx, dir, false)
	require.NoError(t, err)
	assert.Empty(t, dst.Packages())
}

func TestSaveMinimal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := newStore(populated("4.4.0"), Options{})
	require.NoError(t, src.SaveMinimal(ctx, dir, `status <- "restarted"`, true))

	assert.NoFileExists(t, filepath.Join(dir, packagesFile))
	assert.NoFileExists(t, filepath.Join(dir, graphicsFile))
	assert.FileExists(t, filepath.Join(dir, restartFile))

	dst := newWorkspace("4.4.0")
	result, err := newStore(dst, Options{}).Restore(ctx, dir, false)
	require.NoError(t, err)
	require.NotNil(t, result.Deferred)

	v, _ := dst.Get("x")
	assert.Equal(t, "42", v)
	assert.Empty(t, dst.Packages())

	// the after-restart command only runs once the deferred action does
	assert.Empty(t, dst.Executed())
	require.NoError(t, result.Deferred(ctx))
	assert.Equal(t, []string{`status <- "restarted"`}, dst.Executed())
	status, _ := dst.Get("status")
	assert.Equal(t, "restarted", status)
}

func TestRestoreDefersWork(t *testing.T) {
	ctx := context.Background()

	t.Run("server mode defers package attachment", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, newStore(populated("4.4.0"), Options{}).Save(ctx, dir, SaveParams{ServerMode: true}))

		dst := newWorkspace("4.4.0")
		result, err := newStore(dst, Options{}).Restore(ctx, dir, true)
		require.NoError(t, err)
		require.NotNil(t, result.Deferred)
		assert.Empty(t, dst.Packages())

		require.NoError(t, result.Deferred(ctx))
		assert.Equal(t, []string{"dplyr", "ggplot2"}, dst.Packages())
	})

	t.Run("profile on restore", func(t *testing.T) {
		dir := t.TempDir()
		src := newStore(populated("4.4.0"), Options{ProfileOnResume: true})
		require.NoError(t, src.Save(ctx, dir, SaveParams{}))

		dst := newWorkspace("4.4.0")
		result, err := newStore(dst, Options{}).Restore(ctx, dir, false)
		require.NoError(t, err)
		require.NotNil(t, result.Deferred)
		assert.Zero(t, dst.ProfileRuns())

		require.NoError(t, result.Deferred(ctx))
		assert.Equal(t, 1, dst.ProfileRuns())
	})

	t.Run("built package is reinstalled", func(t *testing.T) {
		dir := t.TempDir()
		src := newStore(populated("4.4.0"), Options{})
		require.NoError(t, src.Save(ctx, dir, SaveParams{BuiltPackagePath: "/tmp/build/pkg_1.0.tar.gz"}))

		dst := newWorkspace("4.4.0")
		result, err := newStore(dst, Options{}).Restore(ctx, dir, false)
		require.NoError(t, err)
		require.NotNil(t, result.Deferred)
		require.NoError(t, result.Deferred(ctx))
		assert.Equal(t, []string{"/tmp/build/pkg_1.0.tar.gz"}, dst.Installed())
	})
}

func TestEnvVarsCarried(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := newStore(populated("4.4.0"), Options{
		EnvCapture: []string{"LANG", "LC_*"},
		Environ: func() []string {
			return []string{"LANG=en_US.UTF-8", "LC_ALL=C", "HOME=/home/user"}
		},
	})
	require.NoError(t, src.Save(ctx, dir, SaveParams{EphemeralEnvVars: "TOKEN=abc,MODE=restart"}))
	assert.FileExists(t, filepath.Join(dir, envVarsFile))

	env := &envRecorder{}
	_, err := newStore(newWorkspace("4.4.0"), Options{Setenv: env.setenv}).Restore(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"LANG":   "en_US.UTF-8",
		"LC_ALL": "C",
		"TOKEN":  "abc",
		"MODE":   "restart",
	}, env.vars)
}

func TestRestoreChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := newStore(populated("4.4.0"), Options{})
	require.NoError(t, src.Save(ctx, dir, SaveParams{SaveGlobalEnvironment: true, DisableCompression: true}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "environment.bin"), []byte(`{"vars":{"x":"tampered"}}`), 0o600))

	reporter := &recordingReporter{}
	dst := newWorkspace("4.4.0")
	_, err := newStore(dst, Options{Reporter: reporter}).Restore(ctx, dir, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChecksum)
	assert.True(t, IsPersistenceError(err))
	assert.Equal(t, 1, reporter.count())
	assert.Empty(t, dst.Names())
}

func TestRestoreMissingState(t *testing.T) {
	reporter := &recordingReporter{}
	store := newStore(newWorkspace("4.4.0"), Options{Reporter: reporter})

	_, err := store.Restore(context.Background(), filepath.Join(t.TempDir(), "absent"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoState)

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "restore", pe.Op)
	assert.Zero(t, reporter.count())
}

func TestSaveFailureReported(t *testing.T) {
	reporter := &recordingReporter{}
	store := newStore(populated("4.4.0"), Options{Reporter: reporter})

	err := store.Save(context.Background(), "", SaveParams{})
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	assert.Equal(t, 1, reporter.count())
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := filepath.Join(t.TempDir(), "state")
	err := newStore(populated("4.4.0"), Options{}).Save(ctx, dir, SaveParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, dir)
}

func TestSaveReplacesPreviousState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0o600))

	require.NoError(t, newStore(populated("4.4.0"), Options{}).SaveMinimal(ctx, dir, "", false))
	assert.NoFileExists(t, filepath.Join(dir, "stale.txt"))
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	store := newStore(populated("4.4.0"), Options{})

	require.NoError(t, store.Save(ctx, dir, SaveParams{}))
	require.True(t, store.Exists(dir))

	require.NoError(t, store.Destroy(dir))
	assert.False(t, store.Exists(dir))
	assert.NoDirExists(t, dir)

	// destroying a missing directory is not an error
	require.NoError(t, store.Destroy(dir))
	assert.Error(t, store.Destroy(" "))
}

func TestMetadataProbes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := newStore(populated("4.4.0"), Options{ProfileOnResume: true, PackratEnabled: true})
	assert.False(t, store.ProfileOnRestore(dir))
	assert.False(t, store.PackratModeEnabled(dir))

	require.NoError(t, store.SaveMinimal(ctx, dir, "", false))
	assert.True(t, store.ProfileOnRestore(dir))
	assert.True(t, store.PackratModeEnabled(dir))

	plain := t.TempDir()
	require.NoError(t, newStore(populated("4.4.0"), Options{}).SaveMinimal(ctx, plain, "", false))
	assert.False(t, store.ProfileOnRestore(plain))
	assert.False(t, store.PackratModeEnabled(plain))
}

func TestSessionStateInfo(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, newStore(populated("4.3.1"), Options{}).SaveMinimal(ctx, dir, "", true))

	store := newStore(newWorkspace("4.4.0"), Options{})
	info := store.SessionStateInfo()
	assert.True(t, info.SuspendedVersion.IsZero())
	assert.False(t, info.Mismatch())

	// a mismatched version is reported but never refused
	_, err := store.Restore(ctx, dir, false)
	require.NoError(t, err)

	info = store.SessionStateInfo()
	assert.Equal(t, "4.3.1", info.SuspendedVersion.String())
	assert.Equal(t, "4.4.0", info.ActiveVersion.String())
	assert.True(t, info.Mismatch())
}
