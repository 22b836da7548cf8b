package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	"github.com/ariel-frischer/lockstep/internal/output"
	"github.com/ariel-frischer/lockstep/internal/workspace"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List workspace packages and their versions",
	Long: `List every discovered workspace package with its declared version.

Members that cannot be loaded are reported as warnings on stderr.`,
	Example: `  lockstep show
  lockstep show --plain
  lockstep show --json`,
	Args: noArgs,
	RunE: runShow,
}

func init() {
	showCmd.GroupID = shared.GroupInspection
	showCmd.Flags().Bool("json", false, "Print a JSON object mapping package names to versions")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	rc, err := newRunContext(cmd)
	if err != nil {
		return err
	}
	idx, err := rc.discover()
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(rc.out)
		enc.SetIndent("", "  ")
		return enc.Encode(idx.VersionMap())
	}

	if idx.Len() == 0 {
		fmt.Fprintln(rc.out, "No packages found.")
		return nil
	}

	if rc.plain {
		for _, pv := range idx.Versions() {
			fmt.Fprintf(rc.out, "%s: %s\n", pv.Name, pv.Version)
		}
		return nil
	}

	rows := make([][]string, 0, idx.Len())
	for _, p := range idx.Packages() {
		rows = append(rows, []string{p.Name, p.Version.String(), relDir(idx, p)})
	}
	output.Table(rc.out, false, []string{"Package", "Version", "Path"}, rows)
	return nil
}

// relDir returns the package directory relative to the workspace root.
func relDir(idx *workspace.Index, p *workspace.Package) string {
	rel, err := filepath.Rel(idx.Root(), p.Dir)
	if err != nil {
		return p.Dir
	}
	return filepath.ToSlash(rel)
}
