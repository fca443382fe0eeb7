package restart

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/sessionstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/paths"
)

const contextPrefix = "ctx-"

// SessionStatePath returns where a restart save for the session on port
// is written. The result depends only on its arguments.
func SessionStatePath(scratchPath, sessionPort string) string {
	return filepath.Join(paths.RestartContextsPath(scratchPath), contextPrefix+sessionPort)
}

// StateStore is the part of the session state store a restart needs
type StateStore interface {
	Exists(path string) bool
	Restore(ctx context.Context, path string, serverMode bool) (sessionstate.RestoreResult, error)
	Destroy(path string) error
}

// Context identifies the restart slot of one session
type Context struct {
	ScratchPath string
	Port        string
}

// StatePath returns the restart save location
func (c Context) StatePath() string {
	return SessionStatePath(c.ScratchPath, c.Port)
}

// HasSessionState reports whether a restart save is waiting
func (c Context) HasSessionState(store StateStore) bool {
	if c.ScratchPath == "" || c.Port == "" {
		return false
	}
	return store.Exists(c.StatePath())
}

// AutoResume reports whether a restart save resumes without asking
func (c Context) AutoResume() bool {
	return true
}

// Consume restores the restart save and removes it. The save is only
// removed when the restore succeeded. A failed removal is logged and does
// not fail the restore.
func (c Context) Consume(ctx context.Context, store StateStore, serverMode bool, logger *zap.Logger) (sessionstate.RestoreResult, error) {
	path := c.StatePath()
	result, err := store.Restore(ctx, path, serverMode)
	if err != nil {
		return result, fmt.Errorf("failed to restore restart context: %w", err)
	}
	if err := store.Destroy(path); err != nil {
		logging.OrNop(logger).Warn("Restart context restored but not removed",
			zap.String("path", path), zap.Error(err))
	}
	return result, nil
}
