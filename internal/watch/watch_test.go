// Package watch tests manifest change detection and re-checking.
// Related: internal/watch/watch.go
// Tags: watch, fsnotify, fingerprint

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/lockstep/internal/workspace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupWorkspace(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"crates/a\", \"crates/b\"]\n")
	writeFile(t, filepath.Join(root, "crates/a/Cargo.toml"), "[package]\nname = \"a\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(root, "crates/b/Cargo.toml"), "[package]\nname = \"b\"\nversion = \"0.1.0\"\n")
	return root
}

// startWatcher runs a watcher in the background and returns its event stream.
func startWatcher(t *testing.T, root string) <-chan Event {
	t.Helper()

	w, err := New(root, Options{Debounce: 20 * time.Millisecond, PollInterval: 200 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(e Event) { events <- e })
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return events
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()

	select {
	case e := <-events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return Event{}
	}
}

// waitForEvent returns the first event matching accept. Saving a file can be
// observed in several steps, so earlier events are discarded.
func waitForEvent(t *testing.T, events <-chan Event, accept func(Event) bool) Event {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Err == nil && accept(e) {
				return e
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching watch event")
			return Event{}
		}
	}
}

func TestWatcher_ReportsInitialAndChangedState(t *testing.T) {
	t.Parallel()

	root := setupWorkspace(t)
	events := startWatcher(t, root)

	initial := nextEvent(t, events)
	require.NoError(t, initial.Err)
	assert.True(t, initial.Report.Consistent)
	assert.Equal(t, 2, initial.Index.Len())

	writeFile(t, filepath.Join(root, "crates/b/Cargo.toml"), "[package]\nname = \"b\"\nversion = \"0.2.0\"\n")

	changed := nextEvent(t, events)
	require.NoError(t, changed.Err)
	assert.False(t, changed.Report.Consistent)
	assert.Equal(t, []string{"a: 0.1.0", "b: 0.2.0"}, changed.Report.Mismatches)
	assert.NotEqual(t, initial.Fingerprint, changed.Fingerprint)
}

func TestWatcher_IgnoresUnchangedContent(t *testing.T) {
	t.Parallel()

	root := setupWorkspace(t)
	events := startWatcher(t, root)
	nextEvent(t, events)

	// Rewriting identical bytes and touching other files must not re-report.
	writeFile(t, filepath.Join(root, "crates/a/Cargo.toml"), "[package]\nname = \"a\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(root, "crates/a/README.md"), "docs\n")

	select {
	case e := <-events:
		t.Fatalf("unexpected event: %+v", e.Report)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_ReportsDiscoveryErrors(t *testing.T) {
	t.Parallel()

	root := setupWorkspace(t)
	events := startWatcher(t, root)
	nextEvent(t, events)

	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace\n")

	broken := nextEvent(t, events)
	require.Error(t, broken.Err)
	var notFound *workspace.WorkspaceNotFoundError
	assert.ErrorAs(t, broken.Err, &notFound)

	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"crates/a\"]\n")

	fixed := nextEvent(t, events)
	require.NoError(t, fixed.Err)
	assert.Equal(t, 1, fixed.Index.Len())
}

func TestRun_InitialDiscoveryError(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)
	defer w.Close()

	err = w.Run(context.Background(), func(Event) { t.Fatal("no event expected") })
	var notFound *workspace.WorkspaceNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatcher_PicksUpRepairedSkippedMember(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"crates/a\", \"crates/b\"]\n")
	writeFile(t, filepath.Join(root, "crates/a/Cargo.toml"), "[package]\nname = \"a\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(root, "crates/b/Cargo.toml"), "[package]\nname = \"b\"\n")
	events := startWatcher(t, root)

	initial := nextEvent(t, events)
	require.NoError(t, initial.Err)
	assert.Equal(t, 1, initial.Index.Len())
	assert.Len(t, initial.Index.Skipped(), 1)

	writeFile(t, filepath.Join(root, "crates/b/Cargo.toml"), "[package]\nname = \"b\"\nversion = \"0.2.0\"\n")

	repaired := waitForEvent(t, events, func(e Event) bool { return e.Index.Len() == 2 })
	assert.Equal(t, []string{"a", "b"}, repaired.Index.Names())
	assert.Empty(t, repaired.Index.Skipped())
	assert.False(t, repaired.Report.Consistent)
}

func TestWatcher_PicksUpNewGlobMember(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"crates/*\"]\n")
	writeFile(t, filepath.Join(root, "crates/a/Cargo.toml"), "[package]\nname = \"a\"\nversion = \"0.1.0\"\n")
	events := startWatcher(t, root)

	initial := nextEvent(t, events)
	require.NoError(t, initial.Err)
	assert.Equal(t, 1, initial.Index.Len())

	writeFile(t, filepath.Join(root, "crates/c/Cargo.toml"), "[package]\nname = \"c\"\nversion = \"0.1.0\"\n")

	added := waitForEvent(t, events, func(e Event) bool { return e.Index.Len() == 2 })
	assert.Equal(t, []string{"a", "c"}, added.Index.Names())
	assert.True(t, added.Report.Consistent)
}
