// Package paths provides standardized persistence paths for a session.
//
// All suspend and resume code should use these helpers so the ordinary
// suspend location and restart contexts can never collide.
//
// # Directory Structure
//
//	<scratch>/
//	  ├── suspended-session-data/   (ordinary idle suspend)
//	  ├── restart-contexts/
//	  │   └── ctx-<port>/           (restart-driven suspend)
//	  └── client-state/             (global client state)
//	<project>/.sessiond/
//	  └── client-state/             (project client state)
//
// # Usage
//
//	p := paths.For(scratch, project)
//	lifecycle.SetSuspendPaths(p)
package paths
