// Package output provides terminal output formatting utilities for the lockstep CLI.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// defaultWidth is used when the terminal width is unavailable.
const defaultWidth = 80

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultWidth
}

// Table writes rows under headers as a rounded-border table. With plain set,
// each row is printed on one line with cells separated by two spaces and no
// header, which keeps the output stable for scripts.
func Table(w io.Writer, plain bool, headers []string, rows [][]string) {
	if plain {
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, "  "))
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// PrintSuccess prints a green symbol followed by message.
func PrintSuccess(out io.Writer, symbol, message string) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green(symbol), message)
}

// PrintFailure prints a red symbol followed by message.
func PrintFailure(out io.Writer, symbol, message string) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", red(symbol), message)
}

// PrintWarning prints a yellow "Warning:" prefix followed by message.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("Warning:"), message)
}

// PrintAction prints a cyan action label followed by detail, e.g. "Bumping 0.1.0 -> 0.2.0".
func PrintAction(out io.Writer, action, detail string) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan(action), detail)
}
