package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	"github.com/ariel-frischer/lockstep/internal/notes"
	"github.com/ariel-frischer/lockstep/internal/watch"
	"github.com/ariel-frischer/lockstep/internal/workspace"
)

var rootCmd = &cobra.Command{
	Use:   "lockstep",
	Short: "Coordinated versioning and release ordering for Cargo workspaces",
	Long: `lockstep keeps every package of a Cargo workspace on one version.

It discovers workspace members, checks that their versions agree, rewrites
them in place, computes the order in which packages must be published, and
drafts release notes from git history.

Source: https://github.com/ariel-frischer/lockstep`,
	Example: `  # List packages and their versions
  lockstep show

  # Verify every package declares the same version
  lockstep check --strict

  # Set every package to 1.4.0
  lockstep update 1.4.0

  # Bump the minor version of all packages
  lockstep bump minor

  # Print the publish order
  lockstep order

  # Draft release notes since the last tag
  lockstep notes 1.4.0 --output RELEASE.md`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: shared.GroupGettingStarted, Title: "Getting Started:"},
		&cobra.Group{ID: shared.GroupInspection, Title: "Inspection:"},
		&cobra.Group{ID: shared.GroupRelease, Title: "Release:"},
		&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"},
	)

	rootCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace root directory (default: current directory)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Project config file (default: <workspace>/.lockstep/config.yml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Print debug logging to stderr")
	rootCmd.PersistentFlags().Bool("plain", false, "Plain output without colors or tables")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return shared.WrapExitError(shared.ExitInvalidArguments, err)
	})
}

// exactArgs is cobra.ExactArgs reporting failures as invalid arguments.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return shared.WrapExitError(shared.ExitInvalidArguments, err)
		}
		return nil
	}
}

// noArgs is cobra.NoArgs reporting failures as invalid arguments.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return shared.WrapExitError(shared.ExitInvalidArguments, err)
	}
	return nil
}

// setupGlobals applies the global flags before any command runs.
func setupGlobals(cmd *cobra.Command, args []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	if plain {
		color.NoColor = true
	}

	debug, _ := cmd.Flags().GetBool("debug")
	var logger func(format string, args ...any)
	if debug {
		stderr := cmd.ErrOrStderr()
		logger = func(format string, args ...any) {
			fmt.Fprintf(stderr, "[debug] "+format+"\n", args...)
		}
	}
	workspace.SetDebugLogger(logger)
	notes.SetDebugLogger(logger)
	watch.SetDebugLogger(logger)
	return nil
}

// Execute runs the root command. The returned error carries the exit code
// (see shared.ExitCode) and has already been printed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executeContext(ctx)
}

func executeContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	exitErr := classifyError(err)
	printError(rootCmd.ErrOrStderr(), exitErr)
	return exitErr
}
