package suspend

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/clientstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/sessionstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

// Host is the process the session runs in. Cleanup ends the process in
// production; hosts used in tests may return.
type Host interface {
	Init(ctx context.Context, info types.InitInfo) error
	Suspended(opts types.SuspendOptions)
	Resumed()
	Serialization(action types.SerializationAction, path string)
	Cleanup(req types.CleanupRequest)
	Quit()
}

// Graphics is the live graphics device
type Graphics interface {
	Clear()
}

// Reporter surfaces messages to the user
type Reporter = sessionstate.Reporter

// ClientStore commits client state
type ClientStore interface {
	Commit(commitType clientstate.CommitType, globalPath, projectPath string) error
}

// StateStore saves and restores session state
type StateStore interface {
	Save(ctx context.Context, path string, p sessionstate.SaveParams) error
	SaveMinimal(ctx context.Context, path, afterRestartCommand string, saveGlobalEnvironment bool) error
	Restore(ctx context.Context, path string, serverMode bool) (sessionstate.RestoreResult, error)
	Destroy(path string) error
	Exists(path string) bool
	SessionStateInfo() types.SessionStateInfo
}

// Interrupts suppresses user interrupts until release is called
type Interrupts interface {
	Suppress() (release func())
}

type noInterrupts struct{}

func (noInterrupts) Suppress() func() { return func() {} }
