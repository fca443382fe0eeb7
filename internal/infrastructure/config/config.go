package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/sessionstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/utils"
)

// SaveWorkspaceOverrideEnv overrides the computed save-workspace default.
// It is read on every suspend, not at load time.
const SaveWorkspaceOverrideEnv = "SUSPEND_SAVE_WORKSPACE"

// Config holds all application configuration.
type Config struct {
	Session SessionConfig
	State   StateConfig
	Logging LogConfig
	Metrics MetricsConfig
}

// SessionConfig identifies the running session.
type SessionConfig struct {
	ScratchPath    string `envconfig:"SESSION_SCRATCH_PATH"`
	Port           string `envconfig:"SESSION_PORT" default:"8787"`
	ProjectPath    string `envconfig:"SESSION_PROJECT_PATH"`
	ServerMode     bool   `envconfig:"SESSION_SERVER_MODE" default:"false"`
	RuntimeVersion string `envconfig:"SESSION_RUNTIME_VERSION" default:"4.4.0"`
}

// StateConfig controls how session state is written.
type StateConfig struct {
	Compression string `envconfig:"SESSION_COMPRESSION" default:"zstd"`
	EnvCapture  string `envconfig:"SESSION_ENV_CAPTURE" default:"LANG,LC_*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Session.ScratchPath == "" {
		cfg.Session.ScratchPath = defaultScratchPath()
	}
	cfg.State.Compression = strings.ToLower(cfg.State.Compression)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			ScratchPath:    defaultScratchPath(),
			Port:           "8787",
			ServerMode:     false,
			RuntimeVersion: "4.4.0",
		},
		State: StateConfig{
			Compression: sessionstate.CompressionZstd,
			EnvCapture:  "LANG,LC_*",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks values that envconfig cannot.
func (c *Config) Validate() error {
	if err := paths.ValidatePort(c.Session.Port); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := types.ParseVersion(c.Session.RuntimeVersion); err != nil {
		return fmt.Errorf("invalid config: runtime version: %w", err)
	}
	switch strings.ToLower(c.State.Compression) {
	case sessionstate.CompressionZstd, sessionstate.CompressionGzip:
	default:
		return fmt.Errorf("invalid config: unknown compression %q", c.State.Compression)
	}
	return nil
}

// Paths returns the persistence layout for this session.
func (c *Config) Paths() paths.Persistence {
	return paths.For(c.Session.ScratchPath, c.Session.ProjectPath)
}

// EnvCapturePatterns returns the glob patterns of environment variables
// persisted with the session.
func (c *Config) EnvCapturePatterns() []string {
	return utils.SplitList(c.State.EnvCapture)
}

// RuntimeVersion returns the parsed active runtime version.
func (c *Config) RuntimeVersion() types.Version {
	v, err := types.ParseVersion(c.Session.RuntimeVersion)
	if err != nil {
		return types.Version{}
	}
	return v
}

func defaultScratchPath() string {
	return filepath.Join(os.TempDir(), "sessiond")
}
