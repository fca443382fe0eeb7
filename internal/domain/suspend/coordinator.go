package suspend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/clientstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/restart"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/sessionstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/utils"
)

// ForcedSuspendWarning is reported when a forced suspend goes ahead after
// session state failed to save
const ForcedSuspendWarning = "Forcing suspend of process in spite of all session data not being fully saved."

// Session identifies the running session
type Session struct {
	ScratchPath string
	Port        string
	ServerMode  bool
}

// Deps are the collaborators of a Coordinator
type Deps struct {
	Lifecycle  *Lifecycle
	Host       Host
	Graphics   Graphics
	Client     ClientStore
	State      StateStore
	Interrupts Interrupts
	Logger     *zap.Logger
	Metrics    *monitoring.Metrics
	Tracer     *tracing.Tracer
	Reporter   Reporter
	Getenv     func(string) string
	Session    Session
}

// ResumeResult describes what a resume found and restored
type ResumeResult struct {
	Resumed       bool
	FromRestart   bool
	Path          string
	Info          types.SessionStateInfo
	Deferred      sessionstate.DeferredAction
	ErrorMessages []string
}

// Coordinator runs suspend and resume for one session
type Coordinator struct {
	lifecycle  *Lifecycle
	host       Host
	graphics   Graphics
	client     ClientStore
	state      StateStore
	interrupts Interrupts
	logger     *zap.Logger
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
	reporter   Reporter
	getenv     func(string) string
	session    Session

	mu sync.Mutex
}

// NewCoordinator creates a coordinator. Host, Graphics, Client and State
// are required.
func NewCoordinator(d Deps) *Coordinator {
	if d.Lifecycle == nil {
		d.Lifecycle = NewLifecycle()
	}
	if d.Interrupts == nil {
		d.Interrupts = noInterrupts{}
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	return &Coordinator{
		lifecycle:  d.Lifecycle,
		host:       d.Host,
		graphics:   d.Graphics,
		client:     d.Client,
		state:      d.State,
		interrupts: d.Interrupts,
		logger:     logging.OrNop(d.Logger).With(zap.String("component", "suspend")),
		metrics:    d.Metrics,
		tracer:     d.Tracer,
		reporter:   d.Reporter,
		getenv:     d.Getenv,
		session:    d.Session,
	}
}

// Suspend saves the session to targetPath and hands the process to the
// host for cleanup. Compression may only be disabled on a forced suspend;
// anything else panics with a *ContractViolation.
//
// A cancelled ctx stops the suspend before anything is written. Once the
// save has started it runs to completion regardless of ctx. Without force,
// a failed save aborts the suspend with a *SuspendError and the session
// stays active. With force the failure is reported and the suspend goes
// ahead.
func (c *Coordinator) Suspend(ctx context.Context, opts types.SuspendOptions, targetPath string, disableCompression, force bool) error {
	if disableCompression && !force {
		v := &ContractViolation{Op: "suspend", Reason: "compression can only be disabled for a forced suspend"}
		c.logger.Error("Suspend contract violated", zap.String("reason", v.Reason))
		panic(v)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lifecycle.Suspended() {
		return ErrAlreadySuspended
	}
	if err := ctx.Err(); err != nil {
		c.logger.Info("Suspend cancelled before saving", zap.String("path", targetPath), zap.Error(err))
		return fmt.Errorf("suspend cancelled: %w", err)
	}

	ctx, span := c.tracer.StartSpan(ctx, "suspend")
	defer span.End()
	span.SetTag("path", targetPath)

	logger := c.logger.With(
		zap.String("suspend_id", id.NewSuspendID().String()),
		zap.String("path", targetPath),
		zap.Bool("force", force),
		zap.Bool("minimal", opts.SaveMinimal))
	logger.Info("Suspending session", zap.Int("exit_status", opts.ExitStatus))

	c.lifecycle.setState(types.StateSavingClientState)
	_, clientSpan := c.tracer.StartSpan(ctx, "suspend.client_state")
	if err := c.SaveClientState(clientstate.CommitAll); err != nil {
		clientSpan.SetError(err)
		logger.Warn("Client state not fully saved", zap.Error(err))
	}
	clientSpan.End()

	saveWorkspace := c.saveWorkspace(opts)
	if opts.SaveMinimal {
		c.graphics.Clear()
	}

	c.lifecycle.setState(types.StateSavingSessionState)
	start := time.Now()
	err := c.saveSessionState(context.WithoutCancel(ctx), opts, targetPath, disableCompression, saveWorkspace)
	c.metrics.RecordSave(opts.SaveMinimal, time.Since(start))

	outcome := monitoring.OutcomeOK
	if err != nil {
		span.SetError(err)
		if !force {
			c.lifecycle.setState(types.StateActive)
			c.metrics.RecordSuspend(monitoring.OutcomeAborted)
			logger.Error("Suspend aborted", zap.Error(err))
			c.report(fmt.Sprintf("Session suspend aborted: %v", err))
			return &SuspendError{Path: targetPath, Err: err}
		}
		outcome = monitoring.OutcomeForced
		logger.Warn(ForcedSuspendWarning, zap.Error(err))
		c.report(ForcedSuspendWarning)
	}

	c.lifecycle.MarkSuspended()
	c.metrics.RecordSuspend(outcome)
	logger.Info("Session suspended", zap.String("outcome", outcome))

	c.host.Suspended(opts)
	c.host.Cleanup(types.CleanupRequest{
		SaveAction: types.SaveActionNoSave,
		ExitStatus: opts.ExitStatus,
		RunLast:    false,
	})
	return nil
}

// SuspendDefault suspends to the ordinary suspended-session path with
// compression on
func (c *Coordinator) SuspendDefault(ctx context.Context, force bool, exitStatus int, ephemeralEnvVars string) error {
	opts := types.NewSuspendOptions(exitStatus, ephemeralEnvVars)
	return c.Suspend(ctx, opts, c.SuspendedSessionPath(), false, force)
}

// SuspendForRestart force-suspends to the restart context of this session
// without compression
func (c *Coordinator) SuspendForRestart(ctx context.Context, opts types.SuspendOptions) error {
	path := restart.SessionStatePath(c.session.ScratchPath, c.session.Port)
	return c.Suspend(ctx, opts, path, true, true)
}

// SaveClientState commits client state to the persistence paths
func (c *Coordinator) SaveClientState(commitType clientstate.CommitType) error {
	p := c.lifecycle.Paths()
	err := c.client.Commit(commitType, p.ClientStatePath, p.ProjectClientStatePath)
	c.metrics.RecordClientCommit(err)
	return err
}

// SuspendedSessionPath returns the ordinary suspend location
func (c *Coordinator) SuspendedSessionPath() string {
	return c.lifecycle.Paths().SuspendedSessionPath
}

// ClientStatePath returns the global client state location
func (c *Coordinator) ClientStatePath() string {
	return c.lifecycle.Paths().ClientStatePath
}

// ProjectClientStatePath returns the project client state location
func (c *Coordinator) ProjectClientStatePath() string {
	return c.lifecycle.Paths().ProjectClientStatePath
}

// Suspended reports whether this process has been suspended
func (c *Coordinator) Suspended() bool {
	return c.lifecycle.Suspended()
}

// Lifecycle returns the lifecycle the coordinator drives
func (c *Coordinator) Lifecycle() *Lifecycle {
	return c.lifecycle
}

// Resume restores a saved session if there is one. A restart save wins
// over an ordinary suspended session. The consumed save is removed once
// restored. A zero result with a nil error means there was nothing to
// resume.
func (c *Coordinator) Resume(ctx context.Context) (ResumeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rc := restart.Context{ScratchPath: c.session.ScratchPath, Port: c.session.Port}

	var result ResumeResult
	switch {
	case rc.HasSessionState(c.state):
		result.FromRestart = true
		result.Path = rc.StatePath()
	case c.SuspendedSessionPath() != "" && c.state.Exists(c.SuspendedSessionPath()):
		result.Path = c.SuspendedSessionPath()
	default:
		c.logger.Debug("No saved session to resume")
		return result, nil
	}

	source := monitoring.SourceSuspend
	if result.FromRestart {
		source = monitoring.SourceRestart
	}
	ctx, span := c.tracer.StartSpan(ctx, "resume")
	defer span.End()
	span.SetTag("source", source)

	logger := c.logger.With(zap.String("path", result.Path), zap.String("source", source))
	logger.Info("Resuming session")

	restored, err := c.restore(ctx, rc, result)
	c.metrics.RecordResume(source, err)
	if err != nil {
		span.SetError(err)
		logger.Error("Failed to resume session", zap.Error(err))
		return result, fmt.Errorf("failed to resume session: %w", err)
	}

	result.Resumed = true
	result.Deferred = restored.Deferred
	result.ErrorMessages = restored.ErrorMessages
	result.Info = c.state.SessionStateInfo()

	if result.Info.Mismatch() {
		msg := fmt.Sprintf("Session was suspended under runtime %s and is resuming under %s",
			result.Info.SuspendedVersion, result.Info.ActiveVersion)
		logger.Warn(msg)
		c.report(msg)
	}

	c.host.Resumed()
	logger.Info("Session resumed", zap.Bool("deferred", result.Deferred != nil))
	return result, nil
}

func (c *Coordinator) restore(ctx context.Context, rc restart.Context, result ResumeResult) (sessionstate.RestoreResult, error) {
	scope := beginSerialization(c.host, types.SerializationResumeSession, result.Path, c.logger)
	defer scope.End()

	if result.FromRestart {
		return rc.Consume(ctx, c.state, c.session.ServerMode, c.logger)
	}

	restored, err := c.state.Restore(ctx, result.Path, c.session.ServerMode)
	if err != nil {
		return restored, err
	}
	if err := c.state.Destroy(result.Path); err != nil {
		c.logger.Warn("Resumed session state not removed", zap.String("path", result.Path), zap.Error(err))
	}
	return restored, nil
}

// Start resumes any saved session, initializes the host and runs the work
// the restore deferred. A failed resume starts a fresh session. The host
// is told to quit when it fails to initialize.
func (c *Coordinator) Start(ctx context.Context) (ResumeResult, error) {
	result, err := c.Resume(ctx)
	if err != nil {
		c.report(fmt.Sprintf("Unable to resume session: %v", err))
		result = ResumeResult{}
	}

	if err := c.host.Init(ctx, types.InitInfo{Resumed: result.Resumed}); err != nil {
		c.logger.Error("Session host failed to initialize", zap.Error(err))
		c.host.Quit()
		return result, fmt.Errorf("failed to initialize session: %w", err)
	}

	if result.Deferred != nil {
		if err := result.Deferred(ctx); err != nil {
			c.logger.Warn("Deferred resume work failed", zap.Error(err))
			c.report(fmt.Sprintf("Error completing session resume: %v", err))
		}
	}
	return result, nil
}

// saveSessionState runs the store call under interrupt suppression and a
// SuspendSession serialization scope
func (c *Coordinator) saveSessionState(ctx context.Context, opts types.SuspendOptions, path string, disableCompression, saveWorkspace bool) error {
	release := c.interrupts.Suppress()
	defer release()

	scope := beginSerialization(c.host, types.SerializationSuspendSession, path, c.logger)
	defer scope.End()

	ctx, span := c.tracer.StartSpan(ctx, "suspend.session_state")
	defer span.End()

	if opts.SaveMinimal {
		return c.state.SaveMinimal(ctx, path, opts.AfterRestartCommand, saveWorkspace)
	}
	return c.state.Save(ctx, path, sessionstate.SaveParams{
		AfterRestartCommand:   opts.AfterRestartCommand,
		BuiltPackagePath:      opts.BuiltPackagePath,
		ServerMode:            c.session.ServerMode,
		ExcludePackages:       opts.ExcludePackages,
		DisableCompression:    disableCompression,
		SaveGlobalEnvironment: saveWorkspace,
		EphemeralEnvVars:      opts.EphemeralEnvVars,
	})
}

// saveWorkspace resolves whether the global environment is saved. A full
// suspend always defaults to saving it regardless of opts.SaveWorkspace;
// the override variable wins over either default.
func (c *Coordinator) saveWorkspace(opts types.SuspendOptions) bool {
	def := true
	if opts.SaveMinimal {
		def = opts.SaveWorkspace
	}
	return utils.IsTruthy(c.getenv(config.SaveWorkspaceOverrideEnv), def)
}

func (c *Coordinator) report(msg string) {
	if c.reporter != nil {
		c.reporter.ReportWarning(msg)
	}
}

// IsContractViolation reports whether a recovered panic value is a
// *ContractViolation
func IsContractViolation(r interface{}) bool {
	err, ok := r.(error)
	if !ok {
		return false
	}
	var v *ContractViolation
	return errors.As(err, &v)
}
