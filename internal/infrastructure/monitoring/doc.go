// Package monitoring provides Prometheus metrics for suspend and resume.
//
// Metrics are registered on an injected registry so several collectors can
// coexist (one per test, one per process).
//
// Metrics:
//   - sessiond_suspend_total{outcome}: ok, forced or aborted suspends
//   - sessiond_state_save_duration_seconds{mode}: full or minimal save time
//   - sessiond_state_bytes: size of the last persisted state
//   - sessiond_client_state_commits_total{result}
//   - sessiond_resume_total{source}: restart or suspend
//   - sessiond_resume_errors_total
//
// A nil *Metrics is valid and records nothing.
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics()
//	metrics.RecordSuspend(monitoring.OutcomeForced)
//	_ = metrics.WriteText(os.Stdout)
package monitoring
