// Package suspend coordinates suspending a session to disk and resuming it.
//
// A Coordinator commits client state, saves the session state under
// interrupt suppression while the host is told a serialization is in
// progress, then marks the process suspended and hands it to the host for
// cleanup. Failures to persist abort the suspend unless it is forced. A
// suspend may happen at most once per process.
//
// On startup Resume looks for a restart save first, then for an ordinary
// suspended session, restores it and removes it from disk.
package suspend
