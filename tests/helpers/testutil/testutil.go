// Package testutil provides testing utilities and helpers for sessiond tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/clientstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/sessionstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

// MockHost is a mock implementation of the session host for testing.
type MockHost struct {
	mock.Mock
}

// Init mocks the Init method.
func (m *MockHost) Init(ctx context.Context, info types.InitInfo) error {
	args := m.Called(ctx, info)
	return args.Error(0)
}

// Suspended mocks the Suspended method.
func (m *MockHost) Suspended(opts types.SuspendOptions) {
	m.Called(opts)
}

// Resumed mocks the Resumed method.
func (m *MockHost) Resumed() {
	m.Called()
}

// Serialization mocks the Serialization method.
func (m *MockHost) Serialization(action types.SerializationAction, path string) {
	m.Called(action, path)
}

// Cleanup mocks the Cleanup method.
func (m *MockHost) Cleanup(req types.CleanupRequest) {
	m.Called(req)
}

// Quit mocks the Quit method.
func (m *MockHost) Quit() {
	m.Called()
}

// SerializationActions returns the actions passed to Serialization, in order.
func (m *MockHost) SerializationActions() []types.SerializationAction {
	var actions []types.SerializationAction
	for _, call := range m.Calls {
		if call.Method == "Serialization" {
			actions = append(actions, call.Arguments.Get(0).(types.SerializationAction))
		}
	}
	return actions
}

// MockGraphics is a mock implementation of the graphics device for testing.
type MockGraphics struct {
	mock.Mock
}

// Clear mocks the Clear method.
func (m *MockGraphics) Clear() {
	m.Called()
}

// MockClientStore is a mock implementation of the client state store for testing.
type MockClientStore struct {
	mock.Mock
}

// Commit mocks the Commit method.
func (m *MockClientStore) Commit(commitType clientstate.CommitType, globalPath, projectPath string) error {
	args := m.Called(commitType, globalPath, projectPath)
	return args.Error(0)
}

// MockStateStore is a mock implementation of the session state store for testing.
type MockStateStore struct {
	mock.Mock
}

// Save mocks the Save method.
func (m *MockStateStore) Save(ctx context.Context, path string, p sessionstate.SaveParams) error {
	args := m.Called(ctx, path, p)
	return args.Error(0)
}

// SaveMinimal mocks the SaveMinimal method.
func (m *MockStateStore) SaveMinimal(ctx context.Context, path, afterRestartCommand string, saveGlobalEnvironment bool) error {
	args := m.Called(ctx, path, afterRestartCommand, saveGlobalEnvironment)
	return args.Error(0)
}

// Restore mocks the Restore method.
func (m *MockStateStore) Restore(ctx context.Context, path string, serverMode bool) (sessionstate.RestoreResult, error) {
	args := m.Called(ctx, path, serverMode)
	return args.Get(0).(sessionstate.RestoreResult), args.Error(1)
}

// Destroy mocks the Destroy method.
func (m *MockStateStore) Destroy(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// Exists mocks the Exists method.
func (m *MockStateStore) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

// SessionStateInfo mocks the SessionStateInfo method.
func (m *MockStateStore) SessionStateInfo() types.SessionStateInfo {
	args := m.Called()
	return args.Get(0).(types.SessionStateInfo)
}

// MockReporter is a mock implementation of the user-facing reporter for testing.
type MockReporter struct {
	mock.Mock
}

// ReportWarning mocks the ReportWarning method.
func (m *MockReporter) ReportWarning(message string) {
	m.Called(message)
}

// NewMockHost creates a new mock host accepting every call.
func NewMockHost(t *testing.T) *MockHost {
	t.Helper()
	m := new(MockHost)

	m.On("Init", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Suspended", mock.Anything).Maybe()
	m.On("Resumed").Maybe()
	m.On("Serialization", mock.Anything, mock.Anything).Maybe()
	m.On("Cleanup", mock.Anything).Maybe()
	m.On("Quit").Maybe()

	return m
}

// NewMockGraphics creates a new mock graphics device accepting Clear.
func NewMockGraphics(t *testing.T) *MockGraphics {
	t.Helper()
	m := new(MockGraphics)
	m.On("Clear").Maybe()
	return m
}

// NewMockClientStore creates a new mock client store whose commits succeed.
func NewMockClientStore(t *testing.T) *MockClientStore {
	t.Helper()
	m := new(MockClientStore)
	m.On("Commit", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

// NewMockStateStore creates a new mock state store without default behaviors.
func NewMockStateStore(t *testing.T) *MockStateStore {
	t.Helper()
	return new(MockStateStore)
}

// NewMockReporter creates a new mock reporter accepting every warning.
func NewMockReporter(t *testing.T) *MockReporter {
	t.Helper()
	m := new(MockReporter)
	m.On("ReportWarning", mock.Anything).Maybe()
	return m
}

// CreateTestSuspendOptions creates suspend options with default values.
func CreateTestSuspendOptions(t *testing.T, overrides map[string]interface{}) types.SuspendOptions {
	t.Helper()

	opts := types.NewSuspendOptions(types.ExitContinue, "")

	if minimal, ok := overrides["save_minimal"].(bool); ok {
		opts.SaveMinimal = minimal
	}
	if workspace, ok := overrides["save_workspace"].(bool); ok {
		opts.SaveWorkspace = workspace
	}
	if exclude, ok := overrides["exclude_packages"].(bool); ok {
		opts.ExcludePackages = exclude
	}
	if status, ok := overrides["exit_status"].(int); ok {
		opts.ExitStatus = status
	}
	if cmd, ok := overrides["after_restart_command"].(string); ok {
		opts.AfterRestartCommand = cmd
	}

	return opts
}
