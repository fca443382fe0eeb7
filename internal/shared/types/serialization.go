package types

// SerializationAction tags a persistence phase reported to the client
type SerializationAction int

const (
	SerializationSaveDefaultWorkspace SerializationAction = iota + 1
	SerializationLoadDefaultWorkspace
	SerializationSuspendSession
	SerializationResumeSession
	SerializationCompleted
)

// String returns the string representation of the action
func (a SerializationAction) String() string {
	switch a {
	case SerializationSaveDefaultWorkspace:
		return "save_default_workspace"
	case SerializationLoadDefaultWorkspace:
		return "load_default_workspace"
	case SerializationSuspendSession:
		return "suspend_session"
	case SerializationResumeSession:
		return "resume_session"
	case SerializationCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
