package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	"github.com/ariel-frischer/lockstep/internal/notes"
	"github.com/ariel-frischer/lockstep/internal/progress"
	"github.com/ariel-frischer/lockstep/internal/semver"
)

var notesCmd = &cobra.Command{
	Use:   "notes <version>",
	Short: "Generate markdown release notes from git history",
	Long: `Generate markdown release notes for <version> from the commits made
since the most recent tag reachable from HEAD.

When the workspace is not a git repository, or no tag exists, minimal notes
stating the version bump are produced instead and a warning explains why.`,
	Example: `  lockstep notes 1.4.0
  lockstep notes 1.4.0 --since v1.2.0
  lockstep notes 2.0.0 --grouped --output RELEASE.md`,
	Args: exactArgs(1),
	RunE: runNotes,
}

func init() {
	notesCmd.GroupID = shared.GroupRelease
	notesCmd.Flags().String("since", "", "Collect commits since this tag instead of the latest one")
	notesCmd.Flags().Bool("grouped", false, "Group commits into Conventional Commit sections")
	notesCmd.Flags().StringP("output", "o", "", "Write notes to a file instead of stdout")
	notesCmd.Flags().Int("max-commits", 0, "Limit the number of listed commits (0 uses the config value)")
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, args []string) error {
	v, err := semver.Parse(args[0])
	if err != nil {
		return err
	}

	rc, err := newRunContext(cmd)
	if err != nil {
		return err
	}

	opts := notes.Options{
		MaxCommits: rc.cfg.Notes.MaxCommits,
		Grouped:    rc.cfg.Notes.Grouped,
	}
	opts.Since, _ = cmd.Flags().GetString("since")
	if cmd.Flags().Changed("grouped") {
		opts.Grouped, _ = cmd.Flags().GetBool("grouped")
	}
	if maxCommits, _ := cmd.Flags().GetInt("max-commits"); maxCommits > 0 {
		opts.MaxCommits = maxCommits
	}

	caps := progress.DetectTerminalCapabilities(os.Stderr)
	sp := progress.NewSpinner(rc.errOut, caps)
	sp.Start("Reading git history...")

	var src notes.CommitSource
	gitSrc, err := notes.OpenGit(rc.root, rc.cfg.Notes.TagPrefix)
	if err == nil {
		src = gitSrc
	}
	n := notes.Synthesize(src, v.String(), opts)

	if caps.IsTTY {
		sp.Stop(!n.Fallback, fmt.Sprintf("Collected %d commits", len(n.Commits)))
	} else {
		sp.Stop(!n.Fallback, "")
	}
	if n.Fallback {
		rc.warnf("using minimal release notes: %s", n.Reason)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return notes.Render(n, rc.out)
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", output, err)
		}
	}
	if err := os.WriteFile(output, []byte(notes.RenderString(n)), 0o644); err != nil {
		return fmt.Errorf("writing release notes: %w", err)
	}
	fmt.Fprintf(rc.out, "Release notes written to %s\n", output)
	return nil
}
