package sessionstate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/atomicfile"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/utils"
)

// Runtime is the embedded runtime whose workspace is persisted. It owns
// the encoding of the workspace itself.
type Runtime interface {
	Version() types.Version
	SaveEnvironment(w io.Writer) error
	LoadEnvironment(data []byte) error
	Packages() []string
	AttachPackages(ctx context.Context, pkgs []string) error
	GraphicsState() ([]byte, error)
	RestoreGraphicsState(data []byte) error
	InstallPackage(ctx context.Context, path string) error
	RunStartupProfile(ctx context.Context) error
	Execute(ctx context.Context, code string) error
}

// Reporter surfaces messages to the user
type Reporter interface {
	ReportWarning(message string)
}

// Options configures a Store
type Options struct {
	Compression     string
	EnvCapture      []string
	ProfileOnResume bool
	PackratEnabled  bool

	Environ func() []string
	Setenv  func(key, value string) error

	Logger   *zap.Logger
	Reporter Reporter
	Metrics  *monitoring.Metrics
}

// SaveParams are the arguments of a full save
type SaveParams struct {
	AfterRestartCommand   string
	BuiltPackagePath      string
	ServerMode            bool
	ExcludePackages       bool
	DisableCompression    bool
	SaveGlobalEnvironment bool
	EphemeralEnvVars      string
}

// DeferredAction finishes a restore once the session is ready to run code
type DeferredAction func(ctx context.Context) error

// RestoreResult carries what a restore could not finish inline
type RestoreResult struct {
	Deferred      DeferredAction
	ErrorMessages []string
}

// Store persists and restores session state directories
type Store struct {
	runtime  Runtime
	opts     Options
	logger   *zap.Logger
	reporter Reporter
	metrics  *monitoring.Metrics
	hasher   *utils.Hasher

	mu               sync.Mutex
	suspendedVersion types.Version
}

// NewStore creates a session state store over runtime
func NewStore(runtime Runtime, opts Options) *Store {
	if opts.Compression == "" {
		opts.Compression = CompressionZstd
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	if opts.Setenv == nil {
		opts.Setenv = os.Setenv
	}
	return &Store{
		runtime:  runtime,
		opts:     opts,
		logger:   logging.OrNop(opts.Logger),
		reporter: opts.Reporter,
		metrics:  opts.Metrics,
		hasher:   utils.DefaultHasher(),
	}
}

// Save serializes the full workspace to path. DisableCompression must only
// be used when the process will not continue running afterwards.
func (s *Store) Save(ctx context.Context, path string, p SaveParams) error {
	compression := s.opts.Compression
	if p.DisableCompression {
		compression = CompressionNone
	}

	meta := s.newMetadata(false, compression)
	meta.ServerMode = p.ServerMode
	meta.ExcludePackages = p.ExcludePackages
	meta.GlobalEnvironment = p.SaveGlobalEnvironment

	err := s.write(ctx, path, meta, func() error {
		if p.SaveGlobalEnvironment {
			if err := s.writeEnvironment(path, meta); err != nil {
				return err
			}
		}
		if err := s.writeEnvVars(path, p.EphemeralEnvVars); err != nil {
			return err
		}
		if !p.ExcludePackages {
			pkgs := PackageList{Packages: s.runtime.Packages()}
			if err := writeTOML(filepath.Join(path, packagesFile), pkgs); err != nil {
				return err
			}
		}
		if err := s.writeGraphics(path); err != nil {
			return err
		}
		return writeTOML(filepath.Join(path, restartFile), RestartInstructions{
			AfterRestartCommand: p.AfterRestartCommand,
			BuiltPackagePath:    p.BuiltPackagePath,
		})
	})
	return s.fail("save", path, err)
}

// SaveMinimal saves the environment and restart command only, leaving out
// packages and graphics
func (s *Store) SaveMinimal(ctx context.Context, path, afterRestartCommand string, saveGlobalEnvironment bool) error {
	meta := s.newMetadata(true, s.opts.Compression)
	meta.GlobalEnvironment = saveGlobalEnvironment
	meta.ExcludePackages = true

	err := s.write(ctx, path, meta, func() error {
		if saveGlobalEnvironment {
			if err := s.writeEnvironment(path, meta); err != nil {
				return err
			}
		}
		return writeTOML(filepath.Join(path, restartFile), RestartInstructions{
			AfterRestartCommand: afterRestartCommand,
		})
	})
	return s.fail("save minimal", path, err)
}

// Restore loads the state at path. Work that must not run during initial
// load (startup profile, package installs, the after-restart command, and
// package attachment in server mode) is returned as a deferred action.
func (s *Store) Restore(ctx context.Context, path string, serverMode bool) (RestoreResult, error) {
	var result RestoreResult

	meta, err := readMetadata(path)
	if err != nil {
		return result, s.fail("restore", path, err)
	}

	suspended, err := types.ParseVersion(meta.RuntimeVersion)
	if err != nil {
		s.logger.Warn("Saved state has no readable runtime version", zap.String("path", path), zap.Error(err))
	}
	s.mu.Lock()
	s.suspendedVersion = suspended
	s.mu.Unlock()

	if err := s.restoreEnvVars(path); err != nil {
		result.ErrorMessages = append(result.ErrorMessages, err.Error())
	}

	if meta.GlobalEnvironment {
		if err := s.restoreEnvironment(path, meta); err != nil {
			return result, s.fail("restore", path, err)
		}
	}

	if !meta.Minimal {
		if err := s.restoreGraphics(path); err != nil {
			result.ErrorMessages = append(result.ErrorMessages, err.Error())
		}
	}

	var pkgs PackageList
	if !meta.ExcludePackages {
		if err := readTOML(filepath.Join(path, packagesFile), &pkgs); err != nil && !errors.Is(err, os.ErrNotExist) {
			result.ErrorMessages = append(result.ErrorMessages, err.Error())
		}
	}
	if len(pkgs.Packages) > 0 && !serverMode {
		if err := s.runtime.AttachPackages(ctx, pkgs.Packages); err != nil {
			result.ErrorMessages = append(result.ErrorMessages, fmt.Sprintf("failed to attach packages: %v", err))
		}
		pkgs.Packages = nil
	}

	var restart RestartInstructions
	if err := readTOML(filepath.Join(path, restartFile), &restart); err != nil && !errors.Is(err, os.ErrNotExist) {
		result.ErrorMessages = append(result.ErrorMessages, err.Error())
	}

	result.Deferred = s.deferred(meta, pkgs.Packages, restart)

	for _, msg := range result.ErrorMessages {
		s.logger.Warn("Session state restored with errors", zap.String("path", path), zap.String("error", msg))
	}
	s.logger.Info("Session state restored",
		zap.String("path", path),
		zap.String("state_id", meta.StateID),
		zap.Bool("deferred", result.Deferred != nil))

	return result, nil
}

// Destroy removes the state directory at path
func (s *Store) Destroy(path string) error {
	if strings.TrimSpace(path) == "" {
		return s.fail("destroy", path, errors.New("path is required"))
	}
	if err := os.RemoveAll(path); err != nil {
		return s.fail("destroy", path, err)
	}
	s.logger.Debug("Session state destroyed", zap.String("path", path))
	return nil
}

// Exists reports whether path holds a complete save
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(path, metadataFile))
	return err == nil
}

// ProfileOnRestore reports whether the saved session asked for its
// startup profile to be run on restore
func (s *Store) ProfileOnRestore(path string) bool {
	meta, err := readMetadata(path)
	return err == nil && meta.ProfileOnRestore
}

// PackratModeEnabled reports whether the saved session was in packrat mode
func (s *Store) PackratModeEnabled(path string) bool {
	meta, err := readMetadata(path)
	return err == nil && meta.PackratMode
}

// SessionStateInfo returns the suspended and active runtime versions
func (s *Store) SessionStateInfo() types.SessionStateInfo {
	s.mu.Lock()
	suspended := s.suspendedVersion
	s.mu.Unlock()

	return types.SessionStateInfo{
		SuspendedVersion: suspended,
		ActiveVersion:    s.runtime.Version(),
	}
}

func (s *Store) newMetadata(minimal bool, compression string) *Metadata {
	return &Metadata{
		FormatVersion:    formatVersion,
		StateID:          uuid.NewString(),
		SavedAt:          time.Now().UTC(),
		RuntimeVersion:   s.runtime.Version().String(),
		Minimal:          minimal,
		Compression:      compression,
		ProfileOnRestore: s.opts.ProfileOnResume,
		PackratMode:      s.opts.PackratEnabled,
	}
}

// write resets path, runs body, then writes the metadata file last
func (s *Store) write(ctx context.Context, path string, meta *Metadata, body func() error) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := resetDir(path); err != nil {
		return err
	}
	if err := body(); err != nil {
		return err
	}
	if err := writeTOML(filepath.Join(path, metadataFile), meta); err != nil {
		return err
	}

	size, err := dirSize(path)
	if err != nil {
		s.logger.Debug("Failed to measure session state", zap.Error(err))
	}
	s.metrics.SetStateBytes(size)
	s.logger.Info("Session state saved",
		zap.String("path", path),
		zap.String("state_id", meta.StateID),
		zap.Bool("minimal", meta.Minimal),
		zap.String("compression", meta.Compression),
		zap.Int64("bytes", size))
	return nil
}

func (s *Store) writeEnvironment(dir string, meta *Metadata) error {
	var buf bytes.Buffer
	if err := s.runtime.SaveEnvironment(&buf); err != nil {
		return fmt.Errorf("failed to serialize environment: %w", err)
	}

	ext, err := fileExt(meta.Compression)
	if err != nil {
		return err
	}
	data, err := compress(meta.Compression, buf.Bytes())
	if err != nil {
		return err
	}

	meta.EnvironmentFile = environmentBase + ext
	meta.EnvironmentChecksum = s.hasher.Checksum(buf.Bytes())
	return atomicfile.Save(filepath.Join(dir, meta.EnvironmentFile), data, 0o600)
}

func (s *Store) restoreEnvironment(dir string, meta *Metadata) error {
	if meta.EnvironmentFile == "" {
		return fmt.Errorf("environment file missing from metadata")
	}
	data, err := os.ReadFile(filepath.Join(dir, meta.EnvironmentFile))
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	raw, err := decompress(meta.Compression, data)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(raw, meta.EnvironmentChecksum) {
		return ErrChecksum
	}
	if err := s.runtime.LoadEnvironment(raw); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	return nil
}

func (s *Store) writeEnvVars(dir, ephemeral string) error {
	vars := EnvVars{
		Captured:  utils.MatchEnv(s.opts.Environ(), s.opts.EnvCapture),
		Ephemeral: utils.ParseEnvAssignments(ephemeral),
	}
	if len(vars.Captured) == 0 && len(vars.Ephemeral) == 0 {
		return nil
	}
	return writeYAML(filepath.Join(dir, envVarsFile), vars)
}

func (s *Store) restoreEnvVars(dir string) error {
	var vars EnvVars
	if err := readYAML(filepath.Join(dir, envVarsFile), &vars); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var failed []string
	for _, m := range []map[string]string{vars.Captured, vars.Ephemeral} {
		for _, key := range utils.SortedKeys(m) {
			if err := s.opts.Setenv(key, m[key]); err != nil {
				failed = append(failed, key)
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to restore environment variables: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *Store) writeGraphics(dir string) error {
	data, err := s.runtime.GraphicsState()
	if err != nil {
		return fmt.Errorf("failed to capture graphics: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	return atomicfile.Save(filepath.Join(dir, graphicsFile), data, 0o600)
}

func (s *Store) restoreGraphics(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, graphicsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read graphics: %w", err)
	}
	if err := s.runtime.RestoreGraphicsState(data); err != nil {
		return fmt.Errorf("failed to restore graphics: %w", err)
	}
	return nil
}

func (s *Store) deferred(meta *Metadata, pkgs []string, restart RestartInstructions) DeferredAction {
	if !meta.ProfileOnRestore && len(pkgs) == 0 && restart.BuiltPackagePath == "" && restart.AfterRestartCommand == "" {
		return nil
	}

	return func(ctx context.Context) error {
		var errs []error
		if len(pkgs) > 0 {
			if err := s.runtime.AttachPackages(ctx, pkgs); err != nil {
				errs = append(errs, fmt.Errorf("failed to attach packages: %w", err))
			}
		}
		if restart.BuiltPackagePath != "" {
			if err := s.runtime.InstallPackage(ctx, restart.BuiltPackagePath); err != nil {
				errs = append(errs, fmt.Errorf("failed to reinstall %s: %w", restart.BuiltPackagePath, err))
			}
		}
		if meta.ProfileOnRestore {
			if err := s.runtime.RunStartupProfile(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to run startup profile: %w", err))
			}
		}
		if restart.AfterRestartCommand != "" {
			if err := s.runtime.Execute(ctx, restart.AfterRestartCommand); err != nil {
				errs = append(errs, fmt.Errorf("failed to run after-restart command: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}

// fail wraps err as a *PersistenceError and reports it on the side channel
func (s *Store) fail(op, path string, err error) error {
	if err == nil {
		return nil
	}
	pe := &PersistenceError{Op: op, Path: path, Err: err}
	s.logger.Error("Session state operation failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
	if s.reporter != nil && !errors.Is(err, ErrNoState) {
		s.reporter.ReportWarning(fmt.Sprintf("Error during session state %s: %v", op, err))
	}
	return pe
}
