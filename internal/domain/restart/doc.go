// Package restart locates session state saved for a forced restart.
//
// A restart save lives under the scratch directory keyed by the session
// port, separate from the ordinary suspended-session location, so a
// restarted process can find and consume it without prompting.
package restart
