package history

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Writer appends history entries with automatic pruning.
type Writer struct {
	// StateDir is the directory containing the history file.
	StateDir string
	// MaxEntries is the maximum number of entries to retain. Zero keeps all.
	MaxEntries int
	// Warnings receives non-fatal logging failures. Defaults to stderr.
	Warnings io.Writer

	mu sync.Mutex
}

// NewWriter creates a new history writer.
func NewWriter(stateDir string, maxEntries int) *Writer {
	return &Writer{
		StateDir:   stateDir,
		MaxEntries: maxEntries,
		Warnings:   os.Stderr,
	}
}

// LogEntry adds a new entry to the history file.
// Errors are non-fatal: they are reported as warnings and never fail the command.
func (w *Writer) LogEntry(entry HistoryEntry) {
	if err := w.logEntryInternal(entry); err != nil && w.Warnings != nil {
		fmt.Fprintf(w.Warnings, "Warning: failed to log history: %v\n", err)
	}
}

func (w *Writer) logEntryInternal(entry HistoryEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	history, err := LoadHistory(w.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	history.Entries = append(history.Entries, entry)

	// Prune oldest entries if over limit
	if w.MaxEntries > 0 && len(history.Entries) > w.MaxEntries {
		excess := len(history.Entries) - w.MaxEntries
		history.Entries = history.Entries[excess:]
	}

	if err := SaveHistory(w.StateDir, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Record is the outcome of a mutating command.
type Record struct {
	Command   string
	Workspace string
	Version   string
	Updated   []string
	Failed    []string
	ExitCode  int
}

// LogCommand logs a command execution that started at start.
func (w *Writer) LogCommand(r Record, start time.Time) {
	w.LogEntry(HistoryEntry{
		Timestamp: start,
		Command:   r.Command,
		Workspace: r.Workspace,
		Version:   r.Version,
		Updated:   r.Updated,
		Failed:    r.Failed,
		ExitCode:  r.ExitCode,
		Duration:  time.Since(start).Round(time.Millisecond).String(),
	})
}

// Filter returns entries matching command (all when empty), limited to the
// most recent limit entries when limit is positive.
func Filter(entries []HistoryEntry, command string, limit int) []HistoryEntry {
	var result []HistoryEntry
	for _, e := range entries {
		if command == "" || e.Command == command {
			result = append(result, e)
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}
