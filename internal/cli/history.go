package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	clierrors "github.com/ariel-frischer/lockstep/internal/errors"
	"github.com/ariel-frischer/lockstep/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the release history",
	Long: `View a log of every update and bump with its timestamp, version, the
packages written, the exit code and the duration.

The history is stored in history.yaml under the state_dir config key.`,
	Example: `  lockstep history
  lockstep history --limit 5
  lockstep history --command bump
  lockstep history --clear`,
	Args: noArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.GroupID = shared.GroupConfiguration
	historyCmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	historyCmd.Flags().String("command", "", "Only show entries for this command (update, bump)")
	historyCmd.Flags().Bool("clear", false, "Clear all history")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	command, _ := cmd.Flags().GetString("command")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return shared.WrapExitError(shared.ExitInvalidArguments, fmt.Errorf("limit must be positive, got %d", limit))
	}

	rc, err := newRunContext(cmd)
	if err != nil {
		return err
	}

	if clearFlag {
		if err := history.ClearHistory(rc.cfg.StateDir); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(rc.out, "History cleared.")
		return nil
	}

	histFile, err := history.LoadHistory(rc.cfg.StateDir)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "loading history",
			"Run 'lockstep history --clear' to reset an unreadable history file")
	}

	entries := history.Filter(histFile.Entries, command, limit)
	if len(entries) == 0 {
		if command != "" {
			fmt.Fprintf(rc.out, "No matching entries for command '%s'.\n", command)
		} else {
			fmt.Fprintln(rc.out, "No history available.")
		}
		return nil
	}

	displayEntries(rc.out, entries)
	return nil
}

// displayEntries prints one line per history entry.
func displayEntries(out io.Writer, entries []history.HistoryEntry) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		exitCode := fmt.Sprintf("%d", entry.ExitCode)
		if entry.Succeeded() {
			exitCode = green(exitCode)
		} else {
			exitCode = red(exitCode)
		}

		version := entry.Version
		if version == "" {
			version = "-"
		}

		fmt.Fprintf(out, "%s  %-8s  %-14s  exit=%s  %s  %s\n",
			cyan(entry.Timestamp.Format("2006-01-02 15:04:05")),
			entry.Command,
			version,
			exitCode,
			entry.Duration,
			packagesSummary(entry),
		)
	}
}

func packagesSummary(entry history.HistoryEntry) string {
	var parts []string
	if len(entry.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("updated=%s", strings.Join(entry.Updated, ",")))
	}
	if len(entry.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("failed=%s", strings.Join(entry.Failed, ",")))
	}
	return strings.Join(parts, " ")
}
