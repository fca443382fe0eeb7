package clientstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/atomicfile"
)

const fileExt = ".json"

// Scope selects which part of the client state a value belongs to
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeProject
)

// String returns the string representation of the scope
func (s Scope) String() string {
	if s == ScopeProject {
		return "project"
	}
	return "global"
}

// CommitType selects what Commit writes
type CommitType int

const (
	// CommitAll writes both the global and the project scope
	CommitAll CommitType = iota
	// CommitProjectOnly writes only the project scope
	CommitProjectOnly
)

// WriteError reports a failure to write one scope
type WriteError struct {
	Scope Scope
	Path  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s client state to %s: %v", e.Scope, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Store holds client-visible UI state in memory
type Store struct {
	logger *zap.Logger

	mu      sync.RWMutex
	global  map[string]interface{}
	project map[string]interface{}
}

// NewStore creates an empty client state store
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger:  logging.OrNop(logger),
		global:  make(map[string]interface{}),
		project: make(map[string]interface{}),
	}
}

// Set stores a value under key in the given scope
func (s *Store) Set(scope Scope, key string, value interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopeMap(scope)[key] = value
	return nil
}

// Get returns the value stored under key
func (s *Store) Get(scope Scope, key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.scopeMap(scope)[key]
	return v, ok
}

// Len returns the number of keys in a scope
func (s *Store) Len(scope Scope) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopeMap(scope))
}

// Commit writes the in-memory state. CommitAll writes the global scope to
// globalPath and the project scope to projectPath; a failure in one does
// not stop or undo the other. Each failure is returned as a *WriteError.
func (s *Store) Commit(commitType CommitType, globalPath, projectPath string) error {
	s.mu.RLock()
	global := copyMap(s.global)
	project := copyMap(s.project)
	s.mu.RUnlock()

	var errs []error
	if commitType == CommitAll {
		if err := writeScope(globalPath, global); err != nil {
			errs = append(errs, &WriteError{Scope: ScopeGlobal, Path: globalPath, Err: err})
		}
	}
	if err := writeScope(projectPath, project); err != nil {
		errs = append(errs, &WriteError{Scope: ScopeProject, Path: projectPath, Err: err})
	}

	for _, err := range errs {
		s.logger.Error("Client state commit failed", zap.Error(err))
	}
	return errors.Join(errs...)
}

// Load reads a committed scope back from dir into memory. Used at session
// initialization; the suspend path never reads client state.
func (s *Store) Load(scope Scope, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read client state dir: %w", err)
	}

	loaded := make(map[string]interface{})
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read client state %s: %w", name, err)
		}
		var v interface{}
		if err := sonic.Unmarshal(data, &v); err != nil {
			s.logger.Warn("Skipping unreadable client state", zap.String("file", name), zap.Error(err))
			continue
		}
		loaded[strings.TrimSuffix(name, fileExt)] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if scope == ScopeProject {
		s.project = loaded
	} else {
		s.global = loaded
	}
	return nil
}

func (s *Store) scopeMap(scope Scope) map[string]interface{} {
	if scope == ScopeProject {
		return s.project
	}
	return s.global
}

func writeScope(dir string, values map[string]interface{}) error {
	if dir == "" {
		return errors.New("no path configured")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	for key, value := range values {
		data, err := sonic.ConfigStd.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		if err := atomicfile.Save(filepath.Join(dir, key+fileExt), data, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("client state key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid client state key %q", key)
	}
	return nil
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
