package runtime

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

// Host runs a workspace in the current process. Serialization events and
// warnings are written to out. Cleanup records the exit status and calls
// exit when one is set.
type Host struct {
	out    io.Writer
	logger *zap.Logger
	exit   func(status int)

	mu        sync.Mutex
	running   bool
	resumed   bool
	status    int
	exited    bool
	lastSaved types.SuspendOptions
}

// NewHost creates a host writing to out
func NewHost(out io.Writer, logger *zap.Logger, exit func(status int)) *Host {
	return &Host{
		out:    out,
		logger: logging.OrNop(logger),
		exit:   exit,
	}
}

// Init starts the session
func (h *Host) Init(_ context.Context, info types.InitInfo) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return fmt.Errorf("session already running")
	}
	h.running = true
	h.logger.Info("Session started", zap.Bool("resumed", info.Resumed))
	return nil
}

// Suspended records the options the session was suspended with
func (h *Host) Suspended(opts types.SuspendOptions) {
	h.mu.Lock()
	h.lastSaved = opts
	h.mu.Unlock()
	h.logger.Info("Session suspended", zap.Int("exit_status", opts.ExitStatus))
}

// Resumed records that the session came back from disk
func (h *Host) Resumed() {
	h.mu.Lock()
	h.resumed = true
	h.mu.Unlock()
}

// Serialization forwards a serialization event to the client
func (h *Host) Serialization(action types.SerializationAction, path string) {
	if path == "" {
		fmt.Fprintf(h.out, "[serialization] %s\n", action)
		return
	}
	fmt.Fprintf(h.out, "[serialization] %s %s\n", action, path)
}

// Cleanup ends the session
func (h *Host) Cleanup(req types.CleanupRequest) {
	h.mu.Lock()
	h.running = false
	h.status = req.ExitStatus
	h.exited = true
	exit := h.exit
	h.mu.Unlock()

	h.logger.Info("Session cleanup",
		zap.Stringer("save_action", req.SaveAction),
		zap.Int("exit_status", req.ExitStatus),
		zap.Bool("run_last", req.RunLast))
	if exit != nil {
		exit(req.ExitStatus)
	}
}

// Quit ends the session with a failure status
func (h *Host) Quit() {
	h.Cleanup(types.CleanupRequest{SaveAction: types.SaveActionNoSave, ExitStatus: types.ExitFailure})
}

// ReportWarning shows a warning to the user
func (h *Host) ReportWarning(message string) {
	fmt.Fprintf(h.out, "Warning: %s\n", message)
}

// ExitStatus returns the status cleanup ended the session with
func (h *Host) ExitStatus() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status, h.exited
}

// WasResumed reports whether the session was restored from disk
func (h *Host) WasResumed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resumed
}

// Running reports whether the session is initialized and not cleaned up
func (h *Host) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}
