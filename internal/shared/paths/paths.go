// Package paths provides the standard persistence layout for a session.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Scratch subdirectories
const (
	// SuspendedSessionDir holds workspace state written by an ordinary suspend
	SuspendedSessionDir = "suspended-session-data"

	// RestartContextsDir holds workspace state written by a restart-driven suspend
	RestartContextsDir = "restart-contexts"

	// ClientStateDir holds global client state
	ClientStateDir = "client-state"

	// ProjectClientStateDir holds project client state under the project's scratch dir
	ProjectClientStateDir = "client-state"

	// ProjectScratchDir is the per-project scratch directory
	ProjectScratchDir = ".sessiond"
)

// Persistence holds the three independently addressable persistence locations
type Persistence struct {
	SuspendedSessionPath   string `json:"suspended_session" yaml:"suspended_session"`
	ClientStatePath        string `json:"client_state" yaml:"client_state"`
	ProjectClientStatePath string `json:"project_client_state" yaml:"project_client_state"`
}

// IsZero reports whether no path has been configured
func (p Persistence) IsZero() bool {
	return p == Persistence{}
}

// For returns the standard layout under scratchPath. If projectPath is empty
// the project client state lives next to the global client state.
func For(scratchPath, projectPath string) Persistence {
	project := filepath.Join(scratchPath, "project-"+ProjectClientStateDir)
	if projectPath != "" {
		project = filepath.Join(projectPath, ProjectScratchDir, ProjectClientStateDir)
	}
	return Persistence{
		SuspendedSessionPath:   SuspendedSessionPath(scratchPath),
		ClientStatePath:        filepath.Join(scratchPath, ClientStateDir),
		ProjectClientStatePath: project,
	}
}

// SuspendedSessionPath returns the ordinary suspend location
func SuspendedSessionPath(scratchPath string) string {
	return filepath.Join(scratchPath, SuspendedSessionDir)
}

// RestartContextsPath returns the parent of all restart contexts
func RestartContextsPath(scratchPath string) string {
	return filepath.Join(scratchPath, RestartContextsDir)
}

// ValidatePort checks if a session port is safe for path construction
func ValidatePort(port string) error {
	if port == "" {
		return fmt.Errorf("session port cannot be empty")
	}
	if strings.ContainsAny(port, `/\`) || filepath.Clean(port) != port || port == ".." {
		return fmt.Errorf("session port contains invalid path components")
	}
	return nil
}
