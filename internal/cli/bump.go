package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	"github.com/ariel-frischer/lockstep/internal/output"
	"github.com/ariel-frischer/lockstep/internal/semver"
	"github.com/ariel-frischer/lockstep/internal/workspace"
)

var bumpCmd = &cobra.Command{
	Use:   "bump <major|minor|patch>",
	Short: "Bump the workspace version and apply it to every package",
	Long: `Compute a new version from an existing package's version and apply it to
every workspace package.

The base version is taken from the first discovered package unless --from
names another one. Bumping drops any pre-release suffix:

  major  1.2.3 -> 2.0.0
  minor  1.2.3 -> 1.3.0
  patch  1.2.3 -> 1.2.4

A warning is printed when the base is not the highest version in the
workspace.`,
	Example: `  lockstep bump patch
  lockstep bump minor --from lockstep-core
  lockstep bump major --dry-run`,
	Args:      exactArgs(1),
	ValidArgs: semver.BumpKinds(),
	RunE:      runBump,
}

func init() {
	bumpCmd.GroupID = shared.GroupRelease
	bumpCmd.Flags().String("from", "", "Package whose version is the bump base")
	bumpCmd.Flags().Bool("dry-run", false, "Print the new version without writing manifests")
	rootCmd.AddCommand(bumpCmd)
}

func runBump(cmd *cobra.Command, args []string) error {
	kind, err := semver.ParseBumpKind(args[0])
	if err != nil {
		return err
	}

	rc, err := newRunContext(cmd)
	if err != nil {
		return err
	}
	idx, err := rc.discover()
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetString("from")
	base, err := bumpBase(idx, from)
	if err != nil {
		return err
	}

	if highest, name, ok := idx.HighestVersion(); ok && semver.Compare(base.Version, highest) < 0 {
		rc.warnf("base %s (%s) is lower than %s (%s)", base.Version, base.Name, highest, name)
	}

	next := base.Version.Bump(kind)
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		fmt.Fprintf(rc.out, "%s -> %s (%s bump from %s, dry run)\n", base.Version, next, kind, base.Name)
		return nil
	}

	output.PrintAction(rc.out, "Bumping", fmt.Sprintf("%s -> %s", base.Version, next))
	return applyVersion(rc, idx, "bump", next, "")
}

// bumpBase returns the package whose version is bumped.
func bumpBase(idx *workspace.Index, from string) (*workspace.Package, error) {
	if from != "" {
		return idx.Lookup(from)
	}
	packages := idx.Packages()
	if len(packages) == 0 {
		return nil, fmt.Errorf("no packages found in %s", idx.Root())
	}
	return packages[0], nil
}
