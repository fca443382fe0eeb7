package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/domain/clientstate"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/types"
)

// Suspend and restart command flags
var (
	setVars          []string
	attachPackages   []string
	clientValues     []string
	projectValues    []string
	saveMinimal      bool
	saveWorkspace    bool
	excludePackages  bool
	forceSuspend     bool
	suspendStatus    int
	restartStatus    int
	ephemeralEnvVars string
	afterRestart     string
	builtPackage     string
	freshSession     bool
)

var suspendCmd = &cobra.Command{
	Use:   "suspend",
	Short: "Suspend the session to disk",
	Long: `Resume any saved session, apply the given changes and suspend it to
the ordinary suspended-session location.

A failed save aborts the suspend unless --force is given.

Examples:
  sessiond suspend --set x=1 --set y=2
  sessiond suspend --minimal --save-workspace=false
  sessiond suspend --force --status 101`,
	RunE: runSuspend,
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Force-suspend the session for a restart",
	Long: `Suspend the session into its restart context. The save is forced and
uncompressed; the next start resumes it without asking.

Examples:
  sessiond restart --built-package ./pkg_1.0.tar.gz
  sessiond restart --minimal --after-restart 'status <- "rebuilt"'`,
	RunE: runRestart,
}

func init() {
	for _, cmd := range []*cobra.Command{suspendCmd, restartCmd} {
		cmd.Flags().StringArrayVar(&setVars, "set", nil, "set a workspace variable (name=value)")
		cmd.Flags().StringSliceVar(&attachPackages, "package", nil, "attach packages")
		cmd.Flags().StringArrayVar(&clientValues, "client", nil, "set global client state (key=value)")
		cmd.Flags().StringArrayVar(&projectValues, "project-client", nil, "set project client state (key=value)")
		cmd.Flags().BoolVar(&saveMinimal, "minimal", false, "save only the environment and restart command")
		cmd.Flags().BoolVar(&saveWorkspace, "save-workspace", false, "save the global environment on a minimal suspend")
		cmd.Flags().BoolVar(&excludePackages, "exclude-packages", false, "do not record attached packages")
		cmd.Flags().StringVar(&ephemeralEnvVars, "ephemeral-env", "", "environment variables restored on resume only (A=1,B=2)")
		cmd.Flags().StringVar(&afterRestart, "after-restart", "", "code to run once the session is resumed")
		cmd.Flags().BoolVar(&freshSession, "fresh", false, "do not resume a saved session first")
	}

	suspendCmd.Flags().BoolVar(&forceSuspend, "force", false, "suspend even if the state cannot be fully saved")
	suspendCmd.Flags().IntVar(&suspendStatus, "status", types.ExitContinue, "exit status handed to the launcher")

	restartCmd.Flags().StringVar(&builtPackage, "built-package", "", "package to reinstall after the restart")
	restartCmd.Flags().IntVar(&restartStatus, "status", types.ExitSuspendRestartLauncherSession, "exit status handed to the launcher")
}

func runSuspend(cmd *cobra.Command, args []string) error {
	s, err := prepareSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	opts := suspendOptions(suspendStatus)
	if err := s.coord.Suspend(s.ctx, opts, s.coord.SuspendedSessionPath(), false, forceSuspend); err != nil {
		return err
	}
	s.finish()
	return nil
}

func runRestart(cmd *cobra.Command, args []string) error {
	s, err := prepareSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	opts := suspendOptions(restartStatus)
	opts.BuiltPackagePath = builtPackage
	if err := s.coord.SuspendForRestart(s.ctx, opts); err != nil {
		return err
	}
	s.finish()
	return nil
}

// prepareSession starts a session and applies the changes given on the
// command line
func prepareSession(cmd *cobra.Command) (*session, error) {
	s, err := openSession(cmd)
	if err != nil {
		return nil, err
	}

	if freshSession {
		err = s.host.Init(s.ctx, types.InitInfo{})
	} else {
		_, err = s.coord.Start(s.ctx)
	}
	if err != nil {
		s.close()
		return nil, err
	}

	for _, kv := range setVars {
		name, value, err := splitAssignment(kv)
		if err != nil {
			s.close()
			return nil, err
		}
		s.workspace.Set(name, value)
	}
	if len(attachPackages) > 0 {
		if err := s.workspace.AttachPackages(s.ctx, attachPackages); err != nil {
			s.close()
			return nil, err
		}
	}
	if err := setClientState(s.client, clientstate.ScopeGlobal, clientValues); err != nil {
		s.close()
		return nil, err
	}
	if err := setClientState(s.client, clientstate.ScopeProject, projectValues); err != nil {
		s.close()
		return nil, err
	}

	s.log.Debug("Session prepared",
		zap.Strings("vars", s.workspace.Names()),
		zap.Strings("packages", s.workspace.Packages()))
	return s, nil
}

func suspendOptions(status int) types.SuspendOptions {
	opts := types.NewSuspendOptions(status, ephemeralEnvVars)
	opts.SaveMinimal = saveMinimal
	opts.SaveWorkspace = saveWorkspace
	opts.ExcludePackages = excludePackages
	opts.AfterRestartCommand = afterRestart
	return opts
}

func setClientState(store *clientstate.Store, scope clientstate.Scope, values []string) error {
	for _, kv := range values {
		key, value, err := splitAssignment(kv)
		if err != nil {
			return err
		}
		if err := store.Set(scope, key, value); err != nil {
			return err
		}
	}
	return nil
}

func splitAssignment(kv string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", kv)
	}
	return name, value, nil
}
