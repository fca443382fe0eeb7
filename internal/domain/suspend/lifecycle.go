package suspend

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

// Lifecycle holds the per-process suspend state: the persistence paths,
// fixed once set, and the suspended flag, which never goes back to false.
type Lifecycle struct {
	mu        sync.RWMutex
	paths     paths.Persistence
	pathsSet  bool
	suspended bool
	state     types.State
}

// NewLifecycle creates an active lifecycle with no paths
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: types.StateActive}
}

// SetSuspendPaths fixes the persistence paths for the process
func (l *Lifecycle) SetSuspendPaths(p paths.Persistence) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pathsSet {
		if l.paths == p {
			return nil
		}
		return ErrPathsFixed
	}
	l.paths = p
	l.pathsSet = true
	return nil
}

// Paths returns the persistence paths, zero until set
func (l *Lifecycle) Paths() paths.Persistence {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paths
}

// MarkSuspended records that the process has been suspended
func (l *Lifecycle) MarkSuspended() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.suspended = true
	l.state = types.StateSuspended
}

// Suspended reports whether the process has been suspended
func (l *Lifecycle) Suspended() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.suspended
}

// State returns the current lifecycle state
func (l *Lifecycle) State() types.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Lifecycle) setState(s types.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.suspended {
		return
	}
	l.state = s
}
