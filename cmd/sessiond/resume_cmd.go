package main

import (
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a saved session and show it",
	Long: `Restore the saved session, preferring a restart context over an
ordinary suspended session. The consumed save is removed from disk.

Examples:
  sessiond resume
  sessiond resume --json`,
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
}

type resumeReport struct {
	Resumed          bool              `json:"resumed" yaml:"resumed"`
	FromRestart      bool              `json:"from_restart" yaml:"from_restart"`
	Path             string            `json:"path,omitempty" yaml:"path,omitempty"`
	SuspendedVersion string            `json:"suspended_version,omitempty" yaml:"suspended_version,omitempty"`
	ActiveVersion    string            `json:"active_version" yaml:"active_version"`
	Variables        map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Packages         []string          `json:"packages,omitempty" yaml:"packages,omitempty"`
	Errors           []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func runResume(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	result, err := s.coord.Start(s.ctx)
	if err != nil {
		return err
	}

	report := resumeReport{
		Resumed:       result.Resumed,
		FromRestart:   result.FromRestart,
		Path:          result.Path,
		ActiveVersion: s.workspace.Version().String(),
		Packages:      s.workspace.Packages(),
		Errors:        result.ErrorMessages,
	}
	if !result.Info.SuspendedVersion.IsZero() {
		report.SuspendedVersion = result.Info.SuspendedVersion.String()
	}
	if names := s.workspace.Names(); len(names) > 0 {
		report.Variables = make(map[string]string, len(names))
		for _, name := range names {
			v, _ := s.workspace.Get(name)
			report.Variables[name] = toString(v)
		}
	}
	return writeReport(cmd.OutOrStdout(), report)
}
