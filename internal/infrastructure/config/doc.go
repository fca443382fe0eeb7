// Package config provides 12-factor configuration management for sessiond.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Session: Scratch path, port, project path, server mode, runtime version
//   - State: Environment compression and captured environment variables
//   - Logging: Log level and output format
//   - Metrics: Prometheus metrics toggle
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	lifecycle.SetSuspendPaths(cfg.Paths())
//
// Environment Variables:
//   - SESSION_SCRATCH_PATH, SESSION_PORT, SESSION_PROJECT_PATH
//   - SESSION_SERVER_MODE, SESSION_RUNTIME_VERSION
//   - SESSION_COMPRESSION, SESSION_ENV_CAPTURE
//   - LOG_LEVEL, LOG_DEV, METRICS_ENABLED
//
// SUSPEND_SAVE_WORKSPACE is deliberately not part of Config: it is read
// once per suspend so it can change while the session runs.
package config
