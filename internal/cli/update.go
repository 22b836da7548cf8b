package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	"github.com/ariel-frischer/lockstep/internal/output"
	"github.com/ariel-frischer/lockstep/internal/semver"
	"github.com/ariel-frischer/lockstep/internal/workspace"
)

var updateCmd = &cobra.Command{
	Use:   "update <version>",
	Short: "Set the version of one package or the whole workspace",
	Long: `Set the declared version of every workspace package, or of a single
package with --package.

The version must be MAJOR.MINOR.PATCH with an optional -PRERELEASE suffix.
Updating the whole workspace first prepares every manifest in memory; if any
manifest cannot be rewritten nothing is written. A failure while writing
reports which packages were updated so the command can be re-run.`,
	Example: `  lockstep update 1.4.0
  lockstep update 2.0.0-rc.1
  lockstep update 0.3.1 --package lockstep-core`,
	Args: exactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.GroupID = shared.GroupRelease
	updateCmd.Flags().StringP("package", "p", "", "Update only the named package")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	v, err := semver.Parse(args[0])
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

	pkgName, _ := cmd.Flags().GetString("package")
	return applyVersion(rc, idx, "update", v, pkgName)
}

// applyVersion writes v to one package (pkgName set) or to every package,
// prints the outcome and records it in the release history.
func applyVersion(rc *runContext, idx *workspace.Index, command string, v semver.Version, pkgName string) error {
	writer := workspace.NewWriter(idx)

	if pkgName != "" {
		err := writer.SetVersion(pkgName, v)
		var notFound *workspace.PackageNotFoundError
		if err != nil && errors.As(err, &notFound) {
			return err
		}
		if err != nil {
			rc.record(command, v.String(), nil, []string{pkgName}, err)
			return err
		}
		rc.record(command, v.String(), []string{pkgName}, nil, nil)
		output.PrintSuccess(rc.out, rc.symbols.Checkmark, fmt.Sprintf("Updated %s to %s", pkgName, v))
		return nil
	}

	if err := writer.UpdateAll(v); err != nil {
		updated, failed := updateOutcome(err)
		rc.record(command, v.String(), updated, failed, err)
		return err
	}

	rc.record(command, v.String(), idx.Names(), nil, nil)
	output.PrintSuccess(rc.out, rc.symbols.Checkmark, fmt.Sprintf("Updated %d packages to %s", idx.Len(), v))
	return nil
}

// updateOutcome extracts the updated and failed package names from a
// partial update error.
func updateOutcome(err error) (updated, failed []string) {
	var partial *workspace.PartialUpdateError
	if !errors.As(err, &partial) {
		return nil, nil
	}
	for _, f := range partial.Failed {
		failed = append(failed, f.Package)
	}
	return partial.Updated, failed
}
