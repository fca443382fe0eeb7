package types

// Exit statuses understood by the supervising launcher
const (
	ExitSuccess = 0
	ExitFailure = 1

	// ExitContinue tells the launcher to carry on without this session
	ExitContinue = 100
	// ExitForce tells the launcher to force-restart this session
	ExitForce = 101
	// ExitSuspendRestartLauncherSession asks for a restart under the launcher
	ExitSuspendRestartLauncherSession = 102
)

// SuspendOptions describes a single suspend request
type SuspendOptions struct {
	ExitStatus          int    `json:"exit_status"`
	SaveMinimal         bool   `json:"save_minimal"`
	SaveWorkspace       bool   `json:"save_workspace"`
	ExcludePackages     bool   `json:"exclude_packages"`
	EphemeralEnvVars    string `json:"ephemeral_env_vars,omitempty"`
	AfterRestartCommand string `json:"after_restart_command,omitempty"`
	BuiltPackagePath    string `json:"built_package_path,omitempty"`
}

// NewSuspendOptions returns options for a plain suspend with the given
// exit status and ephemeral environment variables
func NewSuspendOptions(exitStatus int, ephemeralEnvVars string) SuspendOptions {
	return SuspendOptions{
		ExitStatus:       exitStatus,
		EphemeralEnvVars: ephemeralEnvVars,
	}
}

// SaveAction controls what process cleanup does with the workspace
type SaveAction int

const (
	SaveActionNoSave SaveAction = iota
	SaveActionSave
	SaveActionAsk
)

// String returns the string representation of the save action
func (a SaveAction) String() string {
	switch a {
	case SaveActionNoSave:
		return "no-save"
	case SaveActionSave:
		return "save"
	case SaveActionAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// CleanupRequest is handed to the host when the process is about to end
type CleanupRequest struct {
	SaveAction SaveAction
	ExitStatus int
	RunLast    bool
}

// InitInfo is passed to the host when the session starts
type InitInfo struct {
	Resumed bool
}
