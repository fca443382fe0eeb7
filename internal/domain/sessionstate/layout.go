package sessionstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/atomicfile"
)

// Files inside a state directory. The metadata file is written last and
// marks the save as complete.
const (
	metadataFile = "session.toml"
	envVarsFile  = "env_vars.yaml"
	packagesFile = "packages.toml"
	graphicsFile = "graphics.bin"
	restartFile  = "restart.toml"

	environmentBase = "environment"

	formatVersion = 1
)

// Metadata describes a saved session
type Metadata struct {
	FormatVersion       int       `toml:"format_version"`
	StateID             string    `toml:"state_id"`
	SavedAt             time.Time `toml:"saved_at"`
	RuntimeVersion      string    `toml:"runtime_version"`
	Minimal             bool      `toml:"minimal"`
	ServerMode          bool      `toml:"server_mode"`
	ExcludePackages     bool      `toml:"exclude_packages"`
	GlobalEnvironment   bool      `toml:"global_environment"`
	Compression         string    `toml:"compression"`
	EnvironmentFile     string    `toml:"environment_file,omitempty"`
	EnvironmentChecksum string    `toml:"environment_checksum,omitempty"`
	ProfileOnRestore    bool      `toml:"profile_on_restore"`
	PackratMode         bool      `toml:"packrat_mode"`
}

// RestartInstructions are carried across a restart
type RestartInstructions struct {
	AfterRestartCommand string `toml:"after_restart_command"`
	BuiltPackagePath    string `toml:"built_package_path"`
}

// PackageList is the set of attached packages
type PackageList struct {
	Packages []string `toml:"packages"`
}

// EnvVars are environment variables carried with the session
type EnvVars struct {
	Captured  map[string]string `yaml:"captured,omitempty"`
	Ephemeral map[string]string `yaml:"ephemeral,omitempty"`
}

func writeTOML(path string, v interface{}) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return atomicfile.Save(path, data, 0o600)
}

func readTOML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeYAML(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return atomicfile.Save(path, data, 0o600)
}

func readYAML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readMetadata loads the metadata of a complete save
func readMetadata(dir string) (*Metadata, error) {
	var meta Metadata
	if err := readTOML(filepath.Join(dir, metadataFile), &meta); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, err
	}
	if meta.FormatVersion > formatVersion {
		return nil, fmt.Errorf("unsupported state format %d", meta.FormatVersion)
	}
	return &meta, nil
}

// resetDir removes any previous state at dir and recreates it empty
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear previous state: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	return nil
}
