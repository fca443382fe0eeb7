package types

// State represents session lifecycle states
type State string

const (
	StateActive             State = "active"
	StateSavingClientState  State = "saving_client_state"
	StateSavingSessionState State = "saving_session_state"
	StateSuspended          State = "suspended"
)

// SessionStateInfo compares the runtime version a session was suspended
// under with the one that is running now
type SessionStateInfo struct {
	SuspendedVersion Version `json:"suspended_version"`
	ActiveVersion    Version `json:"active_version"`
}

// Mismatch reports a resume across runtime versions. A zero suspended
// version means nothing has been restored yet.
func (i SessionStateInfo) Mismatch() bool {
	if i.SuspendedVersion.IsZero() {
		return false
	}
	return i.SuspendedVersion.Compare(i.ActiveVersion) != 0
}
