package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/restart"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/paths"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show where session state is kept",
	RunE:  runInfo,
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show saved sessions waiting on disk",
	Long: `Report whether a restart context or an ordinary suspended session is
saved, without restoring it.

Examples:
  sessiond probe
  sessiond probe --json`,
	RunE: runProbe,
}

func init() {
	infoCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
	probeCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
}

type infoReport struct {
	SessionID      string            `json:"session_id" yaml:"session_id"`
	Port           string            `json:"port" yaml:"port"`
	ServerMode     bool              `json:"server_mode" yaml:"server_mode"`
	RuntimeVersion string            `json:"runtime_version" yaml:"runtime_version"`
	Compression    string            `json:"compression" yaml:"compression"`
	EnvCapture     []string          `json:"env_capture,omitempty" yaml:"env_capture,omitempty"`
	Paths          paths.Persistence `json:"paths" yaml:"paths"`
	RestartPath    string            `json:"restart_path" yaml:"restart_path"`
}

type probeEntry struct {
	Path             string `json:"path" yaml:"path"`
	Exists           bool   `json:"exists" yaml:"exists"`
	ProfileOnRestore bool   `json:"profile_on_restore" yaml:"profile_on_restore"`
	PackratMode      bool   `json:"packrat_mode" yaml:"packrat_mode"`
}

type probeReport struct {
	Restart    probeEntry `json:"restart" yaml:"restart"`
	Suspended  probeEntry `json:"suspended" yaml:"suspended"`
	AutoResume bool       `json:"auto_resume" yaml:"auto_resume"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	return writeReport(cmd.OutOrStdout(), infoReport{
		SessionID:      s.id.String(),
		Port:           s.cfg.Session.Port,
		ServerMode:     s.cfg.Session.ServerMode,
		RuntimeVersion: s.cfg.RuntimeVersion().String(),
		Compression:    s.cfg.State.Compression,
		EnvCapture:     s.cfg.EnvCapturePatterns(),
		Paths:          s.paths(),
		RestartPath:    restart.SessionStatePath(s.cfg.Session.ScratchPath, s.cfg.Session.Port),
	})
}

func runProbe(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	rc := s.restartContext()
	report := probeReport{
		Restart:    s.probe(rc.StatePath()),
		Suspended:  s.probe(s.coord.SuspendedSessionPath()),
		AutoResume: rc.HasSessionState(s.state) && rc.AutoResume(),
	}
	return writeReport(cmd.OutOrStdout(), report)
}

func (s *session) probe(path string) probeEntry {
	return probeEntry{
		Path:             path,
		Exists:           s.state.Exists(path),
		ProfileOnRestore: s.state.ProfileOnRestore(path),
		PackratMode:      s.state.PackratModeEnabled(path),
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
