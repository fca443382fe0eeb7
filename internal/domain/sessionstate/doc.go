// Package sessionstate persists and restores the workspace of a session.
//
// A saved session is a directory:
//
//	<path>/
//	  session.toml              metadata, written last; its presence marks a complete save
//	  environment.{zst,gz,bin}  global environment bytes from the Runtime
//	  env_vars.yaml             captured and ephemeral environment variables
//	  packages.toml             attached packages (full saves)
//	  graphics.bin              graphics snapshot (full saves)
//	  restart.toml              after-restart command and built package path
//
// Every operation fails with a *PersistenceError, which callers treat as a
// recoverable outcome. Failures are also logged and reported to the user.
// A saved runtime version that differs from the active one is not an error;
// it is exposed through SessionStateInfo.
package sessionstate
