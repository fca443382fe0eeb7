package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Suspend outcomes
const (
	OutcomeOK      = "ok"
	OutcomeForced  = "forced"
	OutcomeAborted = "aborted"
)

// Resume sources
const (
	SourceRestart = "restart"
	SourceSuspend = "suspend"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Suspend metrics
	SuspendTotal  *prometheus.CounterVec
	SaveDuration  *prometheus.HistogramVec
	StateBytes    prometheus.Gauge
	ClientCommits *prometheus.CounterVec

	// Resume metrics
	ResumeTotal  *prometheus.CounterVec
	ResumeErrors prometheus.Counter

	// Snapshot for quick inspection without a scrape
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values
type Snapshot struct {
	Suspends  int64
	Forced    int64
	Aborted   int64
	Resumes   int64
	LastBytes int64
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

// NewMetricsWithRegistry creates a metrics collector registered on reg
func NewMetricsWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SuspendTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sessiond_suspend_total",
				Help: "Total number of suspend attempts by outcome",
			},
			[]string{"outcome"},
		),
		SaveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sessiond_state_save_duration_seconds",
				Help:    "Session state save duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),
		StateBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessiond_state_bytes",
				Help: "Size of the last persisted session state",
			},
		),
		ClientCommits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sessiond_client_state_commits_total",
				Help: "Client state commits by result",
			},
			[]string{"result"},
		),
		ResumeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sessiond_resume_total",
				Help: "Total number of resumes by source",
			},
			[]string{"source"},
		),
		ResumeErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sessiond_resume_errors_total",
				Help: "Total number of failed resumes",
			},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordSuspend records the outcome of a suspend attempt
func (m *Metrics) RecordSuspend(outcome string) {
	if m == nil {
		return
	}
	m.SuspendTotal.WithLabelValues(outcome).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Suspends++
	switch outcome {
	case OutcomeForced:
		m.snapshot.Forced++
	case OutcomeAborted:
		m.snapshot.Aborted++
	}
}

// RecordSave records how long a state save took
func (m *Metrics) RecordSave(minimal bool, duration time.Duration) {
	if m == nil {
		return
	}
	mode := "full"
	if minimal {
		mode = "minimal"
	}
	m.SaveDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// SetStateBytes records the size of the persisted state
func (m *Metrics) SetStateBytes(n int64) {
	if m == nil {
		return
	}
	m.StateBytes.Set(float64(n))

	m.mu.Lock()
	m.snapshot.LastBytes = n
	m.mu.Unlock()
}

// RecordClientCommit records a client state commit
func (m *Metrics) RecordClientCommit(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ClientCommits.WithLabelValues(result).Inc()
}

// RecordResume records a resume
func (m *Metrics) RecordResume(source string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ResumeErrors.Inc()
		return
	}
	m.ResumeTotal.WithLabelValues(source).Inc()

	m.mu.Lock()
	m.snapshot.Resumes++
	m.mu.Unlock()
}

// Snapshot returns current metric values
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
