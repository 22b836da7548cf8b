package cli

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/build"
	"github.com/ariel-frischer/lockstep/internal/cli/shared"
)

// commitDisplayLen is the number of commit hash characters shown.
const commitDisplayLen = 8

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for lockstep",
	Example: `  lockstep version
  lockstep version --plain`,
	Args: noArgs,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		out := cmd.OutOrStdout()
		if plain {
			fmt.Fprintf(out, "lockstep %s\n", build.Version)
			fmt.Fprintf(out, "commit: %s\n", build.Commit)
			fmt.Fprintf(out, "built: %s\n", build.BuildDate)
			fmt.Fprintf(out, "go: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		dim := color.New(color.Faint).SprintFunc()
		fmt.Fprintf(out, "%s %s\n", cyan("lockstep"), build.Version)
		fmt.Fprintf(out, "  %s %s\n", dim("Commit:  "), truncateCommit(build.Commit))
		fmt.Fprintf(out, "  %s %s\n", dim("Built:   "), build.BuildDate)
		fmt.Fprintf(out, "  %s %s\n", dim("Go:      "), runtime.Version())
		fmt.Fprintf(out, "  %s %s/%s\n", dim("Platform:"), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.GroupID = shared.GroupGettingStarted
	rootCmd.AddCommand(versionCmd)
}

func truncateCommit(commit string) string {
	if len(commit) > commitDisplayLen {
		return commit[:commitDisplayLen]
	}
	return commit
}
