package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/clientstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/restart"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/sessionstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/suspend"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/infrastructure/interrupts"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/runtime"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/paths"
)

// session wires one sessiond process
type session struct {
	id  id.SessionID
	ctx context.Context

	cfg        *config.Config
	log        *logging.Logger
	metrics    *monitoring.Metrics
	workspace  *runtime.Workspace
	host       *runtime.Host
	client     *clientstate.Store
	state      *sessionstate.Store
	interrupts *interrupts.Controller
	tracer     *tracing.Tracer
	coord      *suspend.Coordinator

	cancel context.CancelFunc
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logging.ForLevel(cfg.Logging.Level, cfg.Logging.Development || devLogs)
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	logCfg.OutputPaths = []string{"stderr"}
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var metrics *monitoring.Metrics
	if cfg.Metrics.Enabled {
		metrics = monitoring.NewMetrics()
	}

	sid := id.NewSessionID()
	log.Logger = log.With(zap.String("session_id", sid.String()), zap.String("port", cfg.Session.Port))

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	s := &session{
		id:      sid,
		ctx:     ctx,
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		cancel:  cancel,
	}

	s.host = runtime.NewHost(cmd.ErrOrStderr(), log.Component("host"), nil)
	s.workspace = runtime.NewWorkspace(cfg.RuntimeVersion(), log.Component("runtime"))
	s.state = sessionstate.NewStore(s.workspace, sessionstate.Options{
		Compression: cfg.State.Compression,
		EnvCapture:  cfg.EnvCapturePatterns(),
		Logger:      log.Component("sessionstate"),
		Reporter:    s.host,
		Metrics:     metrics,
	})

	p := cfg.Paths()
	s.client = clientstate.NewStore(log.Component("clientstate"))
	if err := s.client.Load(clientstate.ScopeGlobal, p.ClientStatePath); err != nil {
		log.Warn("Global client state not loaded", zap.Error(err))
	}
	if err := s.client.Load(clientstate.ScopeProject, p.ProjectClientStatePath); err != nil {
		log.Warn("Project client state not loaded", zap.Error(err))
	}

	s.interrupts = interrupts.NewController(log.Component("interrupts"), func(sig os.Signal) {
		log.Info("Interrupted", zap.String("signal", sig.String()))
		cancel()
	})
	s.interrupts.Start()

	s.tracer = tracing.New("sessiond", log.Component("tracing"))

	lifecycle := suspend.NewLifecycle()
	if err := lifecycle.SetSuspendPaths(p); err != nil {
		s.close()
		return nil, err
	}

	s.coord = suspend.NewCoordinator(suspend.Deps{
		Lifecycle:  lifecycle,
		Host:       s.host,
		Graphics:   s.workspace,
		Client:     s.client,
		State:      s.state,
		Interrupts: s.interrupts,
		Logger:     log.Component("coordinator"),
		Metrics:    metrics,
		Tracer:     s.tracer,
		Reporter:   s.host,
		Session: suspend.Session{
			ScratchPath: cfg.Session.ScratchPath,
			Port:        cfg.Session.Port,
			ServerMode:  cfg.Session.ServerMode,
		},
	})
	return s, nil
}

func (s *session) paths() paths.Persistence {
	return s.coord.Lifecycle().Paths()
}

func (s *session) restartContext() restart.Context {
	return restart.Context{ScratchPath: s.cfg.Session.ScratchPath, Port: s.cfg.Session.Port}
}

// finish records the exit status cleanup asked for
func (s *session) finish() {
	if status, ok := s.host.ExitStatus(); ok {
		exitStatus = status
	}
}

func (s *session) close() {
	s.interrupts.Stop()
	s.tracer.Close()
	s.cancel()
	if showMetrics && s.metrics != nil {
		if err := s.metrics.WriteText(os.Stderr); err != nil {
			s.log.Warn("Failed to write metrics", zap.Error(err))
		}
	}
	_ = s.log.Sync()
}
