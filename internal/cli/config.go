package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	"github.com/ariel-frischer/lockstep/internal/config"
	"github.com/ariel-frischer/lockstep/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize lockstep configuration",
	Long: `Inspect and initialize lockstep configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (LOCKSTEP_*, "__" separates nesting)
  2. Project config (.lockstep/config.yml or .lockstep/config.json)
  3. User config (~/.config/lockstep/config.yml)
  4. Built-in defaults`,
	Example: `  # Show the effective configuration and where each value came from
  lockstep config show

  # Create the user config file
  lockstep config init

  # Create a project config file
  lockstep config init --project`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  noArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Long: `Write a commented default config file.

By default the user-level config is created. Use --project to create
.lockstep/config.yml in the workspace instead. An existing file is left
unchanged unless --force is given.`,
	Args: noArgs,
	RunE: runConfigInit,
}

func init() {
	configCmd.GroupID = shared.GroupConfiguration
	configShowCmd.Flags().Bool("json", false, "Output in JSON format")
	configInitCmd.Flags().BoolP("project", "p", false, "Create project-level config (.lockstep/config.yml)")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config with defaults")
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	rc, err := newRunContext(cmd)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		values := make(map[string]any, len(rc.cfg.Keys()))
		for _, key := range rc.cfg.Keys() {
			values[key] = rc.cfg.Value(key)
		}
		enc := json.NewEncoder(rc.out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	}

	rows := make([][]string, 0, len(config.KnownKeys))
	for _, key := range config.SortedKeys() {
		rows = append(rows, []string{key, formatConfigValue(rc.cfg.Value(key)), string(rc.cfg.Source(key))})
	}
	output.Table(rc.out, rc.plain, []string{"Key", "Value", "Source"}, rows)
	return nil
}

// formatConfigValue renders a raw config value for display.
func formatConfigValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(val, ",")
	default:
		return fmt.Sprint(val)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	project, _ := cmd.Flags().GetBool("project")
	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()

	configPath, err := initConfigPath(cmd, project)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	_, statErr := os.Stat(configPath)
	exists := statErr == nil
	if exists && !force {
		fmt.Fprintf(out, "%s Config exists at %s (use --force to overwrite)\n", green("✓"), dim(configPath))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	action := "created"
	if exists {
		action = "overwritten"
	}
	fmt.Fprintf(out, "%s Config %s at %s\n", green("✓"), action, dim(configPath))
	return nil
}

// initConfigPath returns the file config init writes to.
func initConfigPath(cmd *cobra.Command, project bool) (string, error) {
	if !project {
		path, err := config.UserConfigPath()
		if err != nil {
			return "", fmt.Errorf("getting user config path: %w", err)
		}
		return path, nil
	}

	wsFlag, _ := cmd.Flags().GetString("workspace")
	if wsFlag == "" {
		return config.ProjectConfigPath(), nil
	}
	return filepath.Join(wsFlag, config.ProjectConfigPath()), nil
}
