package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var destroyRestartOnly bool

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Remove saved sessions",
	Long: `Remove the ordinary suspended session and the restart context of this
session from disk.

Examples:
  sessiond destroy
  sessiond destroy --restart-only`,
	RunE: runDestroy,
}

func init() {
	destroyCmd.Flags().BoolVar(&destroyRestartOnly, "restart-only", false, "only remove the restart context")
}

func runDestroy(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	targets := []string{s.restartContext().StatePath()}
	if !destroyRestartOnly {
		targets = append(targets, s.coord.SuspendedSessionPath())
	}

	for _, path := range targets {
		existed := s.state.Exists(path)
		if err := s.state.Destroy(path); err != nil {
			return err
		}
		if existed {
			s.log.Info("Removed saved session", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
		}
	}
	return nil
}
