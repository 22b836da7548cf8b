// Package watch re-runs workspace discovery and the consistency check when
// manifests change on disk. File events come from fsnotify; a blake3
// fingerprint over every manifest filters out events that did not change
// content.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ariel-frischer/lockstep/internal/workspace"
)

const (
	// DefaultDebounce is the quiet period after the last event before re-checking.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultPollInterval is the backup poll period for missed events.
	DefaultPollInterval = 2 * time.Second
)

// Options configures a Watcher.
type Options struct {
	Debounce     time.Duration
	PollInterval time.Duration
	Discover     workspace.Options
}

// Event is emitted after the initial discovery and after every content change.
type Event struct {
	Index       *workspace.Index
	Report      workspace.ConsistencyReport
	Fingerprint string
	// Err is set when rediscovery failed. Index and Report are then zero.
	Err error
}

// Watcher watches a workspace's manifests.
type Watcher struct {
	root    string
	opts    Options
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	closed  bool
	watched map[string]bool

	index       *workspace.Index
	fingerprint string
}

// New creates a Watcher for the workspace rooted at root.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:    root,
		opts:    opts,
		watcher: watcher,
		watched: make(map[string]bool),
	}, nil
}

// Run performs an initial discovery, reports it, then reports every change
// until ctx is cancelled. Returns the initial discovery error, if any.
func (w *Watcher) Run(ctx context.Context, onChange func(Event)) error {
	idx, err := workspace.Discover(w.root, w.opts.Discover)
	if err != nil {
		return err
	}
	w.index = idx
	w.fingerprint = workspace.Fingerprint(idx)
	w.watchDirs(idx)
	onChange(Event{Index: idx, Report: idx.CheckConsistency(), Fingerprint: w.fingerprint})

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.isManifestEvent(event) {
				debounce = time.After(w.opts.Debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logDebug("[watch] watcher error: %v", err)
		case <-debounce:
			debounce = nil
			w.refresh(onChange)
		case <-ticker.C:
			w.refresh(onChange)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}

// refresh rediscovers the workspace when the manifest fingerprint changed.
func (w *Watcher) refresh(onChange func(Event)) {
	current := workspace.Fingerprint(w.index)
	if current == w.fingerprint {
		return
	}

	idx, err := workspace.Discover(w.root, w.opts.Discover)
	if err != nil {
		w.fingerprint = current
		onChange(Event{Fingerprint: current, Err: err})
		return
	}

	w.index = idx
	w.fingerprint = workspace.Fingerprint(idx)
	w.watchDirs(idx)
	logDebug("[watch] manifests changed, fingerprint %s", w.fingerprint[:12])
	onChange(Event{Index: idx, Report: idx.CheckConsistency(), Fingerprint: w.fingerprint})
}

// watchDirs adds every directory that can affect discovery to the watcher.
// A directory that does not exist yet is covered by its nearest existing
// ancestor inside the workspace.
func (w *Watcher) watchDirs(idx *workspace.Index) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, dir := range idx.WatchDirs() {
		dir = existingAncestor(idx.Root(), dir)
		if w.watched[dir] || w.closed {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			logDebug("[watch] cannot watch %s: %v", dir, err)
			continue
		}
		w.watched[dir] = true
	}
}

func existingAncestor(root, dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if dir == root || parent == dir || !strings.HasPrefix(parent, root) {
			return root
		}
		dir = parent
	}
}

// isManifestEvent reports whether event may change discovery: any change to a
// manifest file, or an entry appearing or disappearing in a watched directory.
func (w *Watcher) isManifestEvent(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	return filepath.Base(event.Name) == w.index.ManifestFile() && event.Has(fsnotify.Write)
}

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for the watcher.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}
