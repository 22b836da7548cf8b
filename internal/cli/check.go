package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	clierrors "github.com/ariel-frischer/lockstep/internal/errors"
	"github.com/ariel-frischer/lockstep/internal/output"
	"github.com/ariel-frischer/lockstep/internal/progress"
	"github.com/ariel-frischer/lockstep/internal/watch"
	"github.com/ariel-frischer/lockstep/internal/workspace"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every package declares the same version",
	Long: `Verify that every workspace package declares the same version.

An inconsistent workspace is a reported result, not a failure: the command
exits 0 and lists every package with its version. Use --strict (or the
strict_check config key) to exit non-zero instead.

With --watch, the check re-runs whenever a manifest changes until
interrupted.`,
	Example: `  lockstep check
  lockstep check --strict
  lockstep check --watch`,
	Args: noArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.GroupID = shared.GroupInspection
	checkCmd.Flags().Bool("strict", false, "Exit non-zero when versions are inconsistent")
	checkCmd.Flags().Bool("watch", false, "Re-check whenever a manifest changes")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	rc, err := newRunContext(cmd)
	if err != nil {
		return err
	}

	if watchFlag, _ := cmd.Flags().GetBool("watch"); watchFlag {
		return runCheckWatch(cmd, rc)
	}

	idx, err := rc.discover()
	if err != nil {
		return err
	}

	report := idx.CheckConsistency()
	printReport(rc.out, rc.symbols, report, idx.Len())

	strict, _ := cmd.Flags().GetBool("strict")
	if (strict || rc.cfg.StrictCheck) && !report.Consistent {
		return shared.WrapExitError(shared.ExitFailure, clierrors.InconsistentVersions(report.Mismatches))
	}
	return nil
}

// printReport writes a consistency report.
func printReport(w io.Writer, symbols progress.ProgressSymbols, report workspace.ConsistencyReport, count int) {
	if version, ok := report.Version(); ok {
		output.PrintSuccess(w, symbols.Checkmark, fmt.Sprintf("All %d packages are at version %s", count, version))
		return
	}

	if count == 0 {
		output.PrintFailure(w, symbols.Failure, "No packages found")
		return
	}

	output.PrintFailure(w, symbols.Failure, fmt.Sprintf("Versions are inconsistent (%d distinct):", len(report.Distinct)))
	for _, m := range report.Mismatches {
		fmt.Fprintf(w, "  %s\n", m)
	}
}

// runCheckWatch re-runs the check on every manifest change until the
// command context is cancelled.
func runCheckWatch(cmd *cobra.Command, rc *runContext) error {
	w, err := watch.New(rc.root, watch.Options{
		Debounce: rc.cfg.Watch.Debounce,
		Discover: rc.discoverOptions(),
	})
	if err != nil {
		return err
	}
	defer w.Close()

	output.PrintAction(rc.errOut, "Watching", rc.root+" (Ctrl+C to stop)")

	return w.Run(cmd.Context(), func(e watch.Event) {
		if e.Err != nil {
			rc.warnf("%v", e.Err)
			return
		}
		for _, s := range e.Index.Skipped() {
			rc.warnf("skipping %s: %s", s.Path, s.Reason)
		}
		printReport(rc.out, rc.symbols, e.Report, e.Index.Len())
	})
}
