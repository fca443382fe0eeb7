package runtime

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

// Workspace is an in-process runtime holding variables, attached packages
// and a graphics surface
type Workspace struct {
	version types.Version
	logger  *zap.Logger

	mu        sync.RWMutex
	vars      map[string]interface{}
	packages  []string
	installed []string
	graphics  []byte
	executed  []string
	profiles  int
}

// snapshot is the serialized form of the global environment
type snapshot struct {
	Vars map[string]interface{} `json:"vars"`
}

// NewWorkspace creates an empty workspace for the given runtime version
func NewWorkspace(version types.Version, logger *zap.Logger) *Workspace {
	return &Workspace{
		version: version,
		logger:  logging.OrNop(logger),
		vars:    make(map[string]interface{}),
	}
}

// Version returns the runtime version
func (w *Workspace) Version() types.Version {
	return w.version
}

// Set assigns a workspace variable
func (w *Workspace) Set(name string, value interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.vars[name] = value
}

// Get reads a workspace variable
func (w *Workspace) Get(name string) (interface{}, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.vars[name]
	return v, ok
}

// Names returns the variable names in order
func (w *Workspace) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.vars))
	for name := range w.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SaveEnvironment writes the global environment
func (w *Workspace) SaveEnvironment(out io.Writer) error {
	w.mu.RLock()
	data, err := sonic.ConfigStd.Marshal(snapshot{Vars: w.vars})
	w.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal environment: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// LoadEnvironment replaces the global environment
func (w *Workspace) LoadEnvironment(data []byte) error {
	var snap snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal environment: %w", err)
	}
	if snap.Vars == nil {
		snap.Vars = make(map[string]interface{})
	}
	w.mu.Lock()
	w.vars = snap.Vars
	w.mu.Unlock()
	return nil
}

// Packages returns the attached packages
func (w *Workspace) Packages() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.packages...)
}

// AttachPackages attaches packages not already attached
func (w *Workspace) AttachPackages(_ context.Context, pkgs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, pkg := range pkgs {
		if !contains(w.packages, pkg) {
			w.packages = append(w.packages, pkg)
		}
	}
	return nil
}

// GraphicsState returns the current graphics surface
func (w *Workspace) GraphicsState() ([]byte, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]byte(nil), w.graphics...), nil
}

// RestoreGraphicsState replaces the graphics surface
func (w *Workspace) RestoreGraphicsState(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.graphics = append([]byte(nil), data...)
	return nil
}

// Draw replaces the graphics surface
func (w *Workspace) Draw(data []byte) {
	_ = w.RestoreGraphicsState(data)
}

// Clear drops the live graphics surface
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.graphics = nil
	w.logger.Debug("Graphics surface cleared")
}

// InstallPackage records a package install from a built path
func (w *Workspace) InstallPackage(_ context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.installed = append(w.installed, path)
	return nil
}

// Installed returns package paths installed since start
func (w *Workspace) Installed() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.installed...)
}

// RunStartupProfile runs the startup profile
func (w *Workspace) RunStartupProfile(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.profiles++
	return nil
}

// ProfileRuns returns how often the startup profile ran
func (w *Workspace) ProfileRuns() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.profiles
}

// Execute runs code in the workspace. Only "name <- value" assignments are
// understood; anything else is recorded as executed.
func (w *Workspace) Execute(_ context.Context, code string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.executed = append(w.executed, code)
	if name, value, ok := parseAssignment(code); ok {
		w.vars[name] = value
	}
	return nil
}

// Executed returns the code run since start
func (w *Workspace) Executed() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.executed...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
