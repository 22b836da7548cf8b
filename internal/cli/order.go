package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	"github.com/ariel-frischer/lockstep/internal/depgraph"
	"github.com/ariel-frischer/lockstep/internal/output"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print packages in dependency order",
	Long: `Print workspace packages so that every package appears after all of
its internal dependencies. This is the order in which packages can be
published.

With --levels, packages are grouped into waves: every package in a wave
depends only on packages from earlier waves.

A dependency cycle is an error (exit code 5) and the cycle is printed.`,
	Example: `  lockstep order
  lockstep order --levels
  lockstep order --json`,
	Args: noArgs,
	RunE: runOrder,
}

func init() {
	orderCmd.GroupID = shared.GroupInspection
	orderCmd.Flags().Bool("levels", false, "Group packages into publish waves")
	orderCmd.Flags().Bool("json", false, "Print the order as JSON")
	rootCmd.AddCommand(orderCmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	rc, err := newRunContext(cmd)
	if err != nil {
		return err
	}
	idx, err := rc.discover()
	if err != nil {
		return err
	}

	graph := depgraph.Build(idx)
	levels, _ := cmd.Flags().GetBool("levels")
	asJSON, _ := cmd.Flags().GetBool("json")

	if levels {
		waves, err := graph.Levels()
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(rc, waves)
		}
		printLevels(rc, graph, waves)
		return nil
	}

	order, err := graph.Order()
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(rc, order)
	}
	if len(order) == 0 {
		fmt.Fprintln(rc.out, "No packages found.")
		return nil
	}

	if rc.plain {
		for _, name := range order {
			fmt.Fprintln(rc.out, name)
		}
		return nil
	}

	rows := make([][]string, 0, len(order))
	for i, name := range order {
		rows = append(rows, []string{strconv.Itoa(i + 1), name, joinOrDash(graph.DependenciesOf(name))})
	}
	output.Table(rc.out, false, []string{"#", "Package", "Depends on"}, rows)
	return nil
}

func printLevels(rc *runContext, graph *depgraph.Graph, waves [][]string) {
	if len(waves) == 0 {
		fmt.Fprintln(rc.out, "No packages found.")
		return
	}
	if rc.plain {
		for i, wave := range waves {
			fmt.Fprintf(rc.out, "%d: %s\n", i+1, strings.Join(wave, " "))
		}
		return
	}

	rows := make([][]string, 0, len(graph.Nodes()))
	for i, wave := range waves {
		for _, name := range wave {
			rows = append(rows, []string{strconv.Itoa(i + 1), name, joinOrDash(graph.Dependents(name))})
		}
	}
	output.Table(rc.out, false, []string{"Wave", "Package", "Needed by"}, rows)
}

func writeJSON(rc *runContext, v any) error {
	enc := json.NewEncoder(rc.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
