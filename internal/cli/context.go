package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/lockstep/internal/config"
	clierrors "github.com/ariel-frischer/lockstep/internal/errors"
	"github.com/ariel-frischer/lockstep/internal/history"
	"github.com/ariel-frischer/lockstep/internal/output"
	"github.com/ariel-frischer/lockstep/internal/progress"
	"github.com/ariel-frischer/lockstep/internal/workspace"
)

// runContext holds what every command needs: effective configuration, the
// workspace root and output streams.
type runContext struct {
	cfg    *config.Configuration
	root   string
	out    io.Writer
	errOut io.Writer
	plain  bool
	start  time.Time

	symbols progress.ProgressSymbols
}

// newRunContext loads configuration and resolves the workspace root.
// The --workspace flag wins over the workspace config key.
func newRunContext(cmd *cobra.Command) (*runContext, error) {
	wsFlag, _ := cmd.Flags().GetString("workspace")
	configPath, _ := cmd.Flags().GetString("config")
	plain, _ := cmd.Flags().GetBool("plain")

	projectDir := wsFlag
	if projectDir == "" {
		projectDir = "."
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: configPath,
		ProjectDir:        projectDir,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, clierrors.InvalidConfig(err)
	}

	root := wsFlag
	if root == "" {
		root = cfg.Workspace
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace path %s: %w", root, err)
	}

	return &runContext{
		cfg:    cfg,
		root:   abs,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		plain:  plain,
		start:  time.Now(),
		symbols: progress.SelectSymbols(progress.TerminalCapabilities{
			SupportsUnicode: !plain,
		}),
	}, nil
}

// discoverOptions converts configuration into discovery options.
func (rc *runContext) discoverOptions() workspace.Options {
	return workspace.Options{
		ManifestFile:       rc.cfg.ManifestFile,
		DependencyTables:   rc.cfg.DependencyTables,
		IncludeRootPackage: rc.cfg.IncludeRootPackage,
	}
}

// discover builds the workspace index and warns about skipped members.
func (rc *runContext) discover() (*workspace.Index, error) {
	idx, err := workspace.Discover(rc.root, rc.discoverOptions())
	if err != nil {
		return nil, err
	}
	for _, s := range idx.Skipped() {
		rc.warnf("skipping %s: %s", s.Path, s.Reason)
	}
	return idx, nil
}

// warnf prints a warning line to stderr.
func (rc *runContext) warnf(format string, args ...any) {
	output.PrintWarning(rc.errOut, fmt.Sprintf(format, args...))
}

// historyWriter returns the release history writer for this run.
func (rc *runContext) historyWriter() *history.Writer {
	w := history.NewWriter(rc.cfg.StateDir, rc.cfg.MaxHistoryEntries)
	w.Warnings = rc.errOut
	return w
}

// record logs a mutating command to the release history.
func (rc *runContext) record(command, version string, updated, failed []string, err error) {
	rc.historyWriter().LogCommand(history.Record{
		Command:   command,
		Workspace: rc.root,
		Version:   version,
		Updated:   updated,
		Failed:    failed,
		ExitCode:  classifyErrorCode(err),
	}, rc.start)
}

func classifyErrorCode(err error) int {
	if err == nil {
		return 0
	}
	return classifyError(err).Code
}
