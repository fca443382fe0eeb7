// Package types provides shared data structures for the session service.
//
// This package defines core types used across all suspend/resume components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - SuspendOptions: A single suspend request
//   - SessionStateInfo: Suspended vs active runtime version
//   - Version: Dotted runtime version
//   - SerializationAction: Persistence phase reported to the client
//
// Lifecycle:
//   - State: Session state (active, saving, suspended)
//   - CleanupRequest: Terminal process cleanup handed to the host
//   - Exit* constants: Status codes read by the supervising launcher
//
// Example Usage:
//
//	opts := types.NewSuspendOptions(types.ExitSuccess, "")
//	opts.SaveMinimal = true
package types
