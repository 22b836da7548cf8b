// Package cli tests end-to-end command execution against fixture workspaces.
// Related: internal/cli/show.go, check.go, update.go, bump.go, order.go, notes.go, history.go, config.go
// Tags: cli, commands, integration, exit-codes

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
)

// crate describes a member written by newWorkspace under crates/<name>.
type crate struct {
	name    string
	version string
	deps    []string
}

func newWorkspace(t *testing.T, crates ...crate) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"crates/*\"]\n")
	for _, c := range crates {
		var b strings.Builder
		fmt.Fprintf(&b, "[package]\nname = %q\nversion = %q\nedition = \"2021\"\n\n[dependencies]\n", c.name, c.version)
		for _, dep := range c.deps {
			fmt.Fprintf(&b, "%s = { path = \"../%s\" }\n", dep, dep)
		}
		writeFile(t, filepath.Join(root, "crates", c.name, "Cargo.toml"), b.String())
	}
	return root
}

// standardWorkspace has alpha -> beta and gamma -> alpha, beta.
func standardWorkspace(t *testing.T) string {
	return newWorkspace(t,
		crate{name: "alpha", version: "0.1.0", deps: []string{"beta"}},
		crate{name: "beta", version: "0.1.0"},
		crate{name: "gamma", version: "0.1.0", deps: []string{"alpha", "beta"}},
	)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func manifestVersion(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "crates", name, "Cargo.toml"))
	require.NoError(t, err)
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "version = ") {
			return strings.Trim(strings.TrimPrefix(line, "version = "), `"`)
		}
	}
	t.Fatalf("no version in %s", name)
	return ""
}

// cliResult holds the captured output of one command run.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

func (r cliResult) code() int {
	return shared.ExitCode(r.err)
}

// runCLI executes the root command with isolated HOME and config dirs.
// Commands share global state, so callers must not use t.Parallel.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return runCLIWithHome(t, args...)
}

// runCLIWithHome executes the root command without resetting HOME, so
// history and user config persist between calls within a test.
func runCLIWithHome(t *testing.T, args ...string) cliResult {
	t.Helper()

	color.NoColor = true
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer resetFlags(rootCmd)

	err := executeContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func TestShowCommand(t *testing.T) {
	root := standardWorkspace(t)

	t.Run("plain", func(t *testing.T) {
		res := runCLI(t, "show", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Equal(t, "alpha: 0.1.0\nbeta: 0.1.0\ngamma: 0.1.0\n", res.stdout)
	})

	t.Run("json", func(t *testing.T) {
		res := runCLI(t, "show", "-w", root, "--json")
		require.NoError(t, res.err)

		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
		assert.Equal(t, map[string]string{"alpha": "0.1.0", "beta": "0.1.0", "gamma": "0.1.0"}, got)
	})

	t.Run("table", func(t *testing.T) {
		res := runCLI(t, "show", "-w", root)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Package")
		assert.Contains(t, res.stdout, "crates/gamma")
	})
}

func TestCheckCommand(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "check", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "All 3 packages are at version 0.1.0")
	})

	t.Run("inconsistent is not a failure", func(t *testing.T) {
		root := newWorkspace(t,
			crate{name: "alpha", version: "0.1.0"},
			crate{name: "beta", version: "0.2.0"},
		)
		res := runCLI(t, "check", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Versions are inconsistent (2 distinct)")
		assert.Contains(t, res.stdout, "alpha: 0.1.0")
		assert.Contains(t, res.stdout, "beta: 0.2.0")
	})

	t.Run("strict flag fails", func(t *testing.T) {
		root := newWorkspace(t,
			crate{name: "alpha", version: "0.1.0"},
			crate{name: "beta", version: "0.2.0"},
		)
		res := runCLI(t, "check", "-w", root, "--strict")
		require.Error(t, res.err)
		assert.Equal(t, shared.ExitFailure, res.code())
		assert.Contains(t, res.stderr, "inconsistent")
	})

	t.Run("strict from environment", func(t *testing.T) {
		root := newWorkspace(t,
			crate{name: "alpha", version: "0.1.0"},
			crate{name: "beta", version: "0.2.0"},
		)
		t.Setenv("LOCKSTEP_STRICT_CHECK", "true")
		res := runCLI(t, "check", "-w", root)
		assert.Equal(t, shared.ExitFailure, res.code())
	})

	t.Run("skipped member warns", func(t *testing.T) {
		root := standardWorkspace(t)
		writeFile(t, filepath.Join(root, "crates", "broken", "Cargo.toml"), "[package\nname = ")
		res := runCLI(t, "check", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, "Warning:")
		assert.Contains(t, res.stderr, "crates/broken")
	})
}

func TestUpdateCommand(t *testing.T) {
	t.Run("all packages", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "update", "1.0.0", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Updated 3 packages to 1.0.0")
		for _, name := range []string{"alpha", "beta", "gamma"} {
			assert.Equal(t, "1.0.0", manifestVersion(t, root, name))
		}

		// Idempotent re-run.
		res = runCLIWithHome(t, "update", "1.0.0", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Equal(t, "1.0.0", manifestVersion(t, root, "beta"))
	})

	t.Run("single package", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "update", "0.2.0-rc.1", "--package", "beta", "-w", root)
		require.NoError(t, res.err)
		assert.Equal(t, "0.2.0-rc.1", manifestVersion(t, root, "beta"))
		assert.Equal(t, "0.1.0", manifestVersion(t, root, "alpha"))
	})

	tests := map[string]struct {
		args     []string
		wantCode int
		wantErr  string
	}{
		"invalid version": {
			args:     []string{"update", "1.2"},
			wantCode: shared.ExitInvalidArguments,
			wantErr:  "invalid version format",
		},
		"v prefix rejected": {
			args:     []string{"update", "v1.2.3"},
			wantCode: shared.ExitInvalidArguments,
			wantErr:  "invalid version format",
		},
		"unknown package": {
			args:     []string{"update", "1.0.0", "--package", "nope"},
			wantCode: shared.ExitInvalidArguments,
			wantErr:  `package "nope" not found`,
		},
		"missing argument": {
			args:     []string{"update"},
			wantCode: shared.ExitInvalidArguments,
		},
		"unknown flag": {
			args:     []string{"update", "1.0.0", "--bogus"},
			wantCode: shared.ExitInvalidArguments,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := standardWorkspace(t)
			res := runCLI(t, append(tt.args, "-w", root)...)
			require.Error(t, res.err)
			assert.Equal(t, tt.wantCode, res.code())
			if tt.wantErr != "" {
				assert.Contains(t, res.stderr, tt.wantErr)
			}
			for _, pkg := range []string{"alpha", "beta", "gamma"} {
				assert.Equal(t, "0.1.0", manifestVersion(t, root, pkg), "failed command must not write %s", pkg)
			}
		})
	}
}

func TestBumpCommand(t *testing.T) {
	tests := map[string]struct {
		kind string
		want string
	}{
		"major": {kind: "major", want: "1.0.0"},
		"minor": {kind: "minor", want: "0.2.0"},
		"patch": {kind: "patch", want: "0.1.1"},
		"upper": {kind: "PATCH", want: "0.1.1"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := standardWorkspace(t)
			res := runCLI(t, "bump", tt.kind, "-w", root, "--plain")
			require.NoError(t, res.err)
			for _, pkg := range []string{"alpha", "beta", "gamma"} {
				assert.Equal(t, tt.want, manifestVersion(t, root, pkg))
			}
		})
	}

	t.Run("dry run writes nothing", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "bump", "minor", "--dry-run", "-w", root)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "0.1.0 -> 0.2.0")
		assert.Equal(t, "0.1.0", manifestVersion(t, root, "alpha"))
	})

	t.Run("from lower package warns", func(t *testing.T) {
		root := newWorkspace(t,
			crate{name: "alpha", version: "0.3.0"},
			crate{name: "beta", version: "0.1.0"},
		)
		res := runCLI(t, "bump", "patch", "--from", "beta", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, "Warning:")
		assert.Equal(t, "0.1.1", manifestVersion(t, root, "alpha"))
	})

	t.Run("pre-release dropped", func(t *testing.T) {
		root := newWorkspace(t, crate{name: "alpha", version: "1.0.0-beta.2"})
		res := runCLI(t, "bump", "patch", "-w", root)
		require.NoError(t, res.err)
		assert.Equal(t, "1.0.1", manifestVersion(t, root, "alpha"))
	})

	t.Run("invalid kind", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "bump", "huge", "-w", root)
		assert.Equal(t, shared.ExitInvalidArguments, res.code())
		assert.Contains(t, res.stderr, `invalid bump kind "huge"`)
	})

	t.Run("unknown from package", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "bump", "patch", "--from", "nope", "-w", root)
		assert.Equal(t, shared.ExitInvalidArguments, res.code())
	})
}

func TestOrderCommand(t *testing.T) {
	t.Run("dependencies first", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "order", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Equal(t, "beta\nalpha\ngamma\n", res.stdout)
	})

	t.Run("json", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "order", "-w", root, "--json")
		require.NoError(t, res.err)

		var got []string
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
		assert.Equal(t, []string{"beta", "alpha", "gamma"}, got)
	})

	t.Run("levels", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "order", "--levels", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Equal(t, "1: beta\n2: alpha\n3: gamma\n", res.stdout)
	})

	t.Run("cycle", func(t *testing.T) {
		root := newWorkspace(t,
			crate{name: "alpha", version: "0.1.0", deps: []string{"beta"}},
			crate{name: "beta", version: "0.1.0", deps: []string{"alpha"}},
		)
		res := runCLI(t, "order", "-w", root)
		require.Error(t, res.err)
		assert.Equal(t, shared.ExitCyclicDependency, res.code())
		assert.Contains(t, res.stderr, "alpha -> beta -> alpha")
	})
}

func TestWorkspaceNotFound(t *testing.T) {
	empty := t.TempDir()
	for _, command := range []string{"show", "check", "order"} {
		t.Run(command, func(t *testing.T) {
			res := runCLI(t, command, "-w", empty)
			require.Error(t, res.err)
			assert.Equal(t, shared.ExitWorkspaceNotFound, res.code())
			assert.Contains(t, res.stderr, "no workspace found")
		})
	}
}

func TestNotesCommand(t *testing.T) {
	t.Run("fallback without git", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "notes", "1.0.0", "-w", root)
		require.NoError(t, res.err)
		assert.Equal(t, "# Release 1.0.0\n\n## Changes\n\n- Version bumped to 1.0.0\n", res.stdout)
		assert.Contains(t, res.stderr, "Warning:")
	})

	t.Run("commits since tag", func(t *testing.T) {
		root := standardWorkspace(t)
		initRepo(t, root)

		res := runCLI(t, "notes", "0.2.0", "-w", root)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "# Release 0.2.0")
		assert.Contains(t, res.stdout, "## Changes since v0.1.0")
		assert.Contains(t, res.stdout, "feat: add widget")
		assert.Contains(t, res.stdout, "fix: handle empty input")
		assert.NotContains(t, res.stdout, "chore: initial import")
	})

	t.Run("grouped to file", func(t *testing.T) {
		root := standardWorkspace(t)
		initRepo(t, root)
		out := filepath.Join(t.TempDir(), "notes", "RELEASE.md")

		res := runCLI(t, "notes", "0.2.0", "--grouped", "--output", out, "-w", root)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Release notes written to")

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "### Features")
		assert.Contains(t, string(data), "### Fixes")
	})

	t.Run("invalid version", func(t *testing.T) {
		root := standardWorkspace(t)
		res := runCLI(t, "notes", "latest", "-w", root)
		assert.Equal(t, shared.ExitInvalidArguments, res.code())
	})
}

// initRepo commits the workspace, tags it v0.1.0 and adds two commits.
func initRepo(t *testing.T, root string) {
	t.Helper()

	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	commit := func(file, message string) {
		when = when.Add(time.Hour)
		if file != "" {
			writeFile(t, filepath.Join(root, file), message+"\n")
		}
		_, err := wt.Add(".")
		require.NoError(t, err)
		_, err = wt.Commit(message, &git.CommitOptions{
			Author: &object.Signature{Name: "Release Bot", Email: "bot@example.com", When: when},
		})
		require.NoError(t, err)
	}

	commit("", "chore: initial import")
	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v0.1.0", head.Hash(), nil)
	require.NoError(t, err)

	commit("widget.txt", "feat: add widget")
	commit("input.txt", "fix: handle empty input")
}

func TestHistoryCommand(t *testing.T) {
	root := standardWorkspace(t)

	res := runCLI(t, "history", "-w", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No history available.")

	res = runCLIWithHome(t, "update", "1.0.0", "-w", root)
	require.NoError(t, res.err)
	res = runCLIWithHome(t, "bump", "minor", "-w", root)
	require.NoError(t, res.err)
	res = runCLIWithHome(t, "update", "2.0", "-w", root)
	require.Error(t, res.err)

	res = runCLIWithHome(t, "history", "-w", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "update")
	assert.Contains(t, res.stdout, "bump")
	assert.Contains(t, res.stdout, "1.1.0")
	assert.Contains(t, res.stdout, "updated=alpha,beta,gamma")

	res = runCLIWithHome(t, "history", "--command", "bump", "-w", root)
	require.NoError(t, res.err)
	assert.Equal(t, 1, strings.Count(res.stdout, "\n"))

	res = runCLIWithHome(t, "history", "--limit", "-1", "-w", root)
	assert.Equal(t, shared.ExitInvalidArguments, res.code())

	res = runCLIWithHome(t, "history", "--clear", "-w", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "History cleared.")

	res = runCLIWithHome(t, "history", "-w", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No history available.")
}

func TestConfigCommands(t *testing.T) {
	t.Run("show reports sources", func(t *testing.T) {
		root := standardWorkspace(t)
		writeFile(t, filepath.Join(root, ".lockstep", "config.yml"), "notes:\n  tag_prefix: release-\n")
		t.Setenv("LOCKSTEP_MAX_HISTORY_ENTRIES", "42")

		res := runCLI(t, "config", "show", "-w", root, "--plain")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "manifest_file  Cargo.toml  default")
		assert.Contains(t, res.stdout, "notes.tag_prefix  release-  project")
		assert.Contains(t, res.stdout, "max_history_entries  42  env")
	})

	t.Run("invalid project config", func(t *testing.T) {
		root := standardWorkspace(t)
		writeFile(t, filepath.Join(root, ".lockstep", "config.yml"), "manifest_file: [unclosed\n")

		res := runCLI(t, "show", "-w", root)
		require.Error(t, res.err)
		assert.Equal(t, shared.ExitFailure, res.code())
	})

	t.Run("init project", func(t *testing.T) {
		root := standardWorkspace(t)

		res := runCLI(t, "config", "init", "--project", "-w", root)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Config created")
		assert.FileExists(t, filepath.Join(root, ".lockstep", "config.yml"))

		res = runCLIWithHome(t, "config", "init", "--project", "-w", root)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Config exists")

		res = runCLIWithHome(t, "config", "init", "--project", "--force", "-w", root)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Config overwritten")

		// The generated template loads cleanly.
		res = runCLIWithHome(t, "show", "-w", root, "--plain")
		require.NoError(t, res.err)
	})
}

func TestVersionCommand(t *testing.T) {
	res := runCLI(t, "version", "--plain")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "lockstep dev")
	assert.Contains(t, res.stdout, "platform:")
}

func TestHistoryCommand_CorruptFile(t *testing.T) {
	root := standardWorkspace(t)
	res := runCLI(t, "history", "-w", root)
	require.NoError(t, res.err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	writeFile(t, filepath.Join(home, ".lockstep", "state", "history.yaml"), "entries: [unclosed\n")

	res = runCLIWithHome(t, "history", "-w", root)
	require.Error(t, res.err)
	assert.Equal(t, shared.ExitFailure, res.code())
	assert.Contains(t, res.stderr, "loading history")
	assert.Contains(t, res.stderr, "history --clear")
}
