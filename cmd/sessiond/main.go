// sessiond suspends interactive sessions to disk and resumes them.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

// Global flags
var (
	logLevel    string
	devLogs     bool
	showMetrics bool
)

// exitStatus is the status the session's cleanup asked for
var exitStatus = types.ExitSuccess

var rootCmd = &cobra.Command{
	Use:   "sessiond",
	Short: "Suspend and resume interactive sessions",
	Long: `sessiond persists the state of an interactive session so it survives
an idle timeout, a forced restart or a runtime upgrade.

Configuration is read from the environment (SESSION_SCRATCH_PATH,
SESSION_PORT, SESSION_PROJECT_PATH, SESSION_COMPRESSION, ...).

Examples:
  sessiond suspend --set x=1 --package dplyr   # resume any saved session, update it, suspend
  sessiond restart --after-restart 'x <- 2'    # force-suspend into the restart context
  sessiond resume                              # restore and show the saved session
  sessiond probe                               # show what is waiting on disk
  sessiond destroy                             # remove saved sessions`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&devLogs, "dev", false, "human readable logs")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print metrics to stderr before exiting")

	rootCmd.AddCommand(suspendCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(destroyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(types.ExitFailure)
	}
	os.Exit(exitStatus)
}
