package notes

import (
	"errors"
	"fmt"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for release note synthesis.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Synthesize collects the commits since the last tag and returns notes for
// version. It never fails; a missing tag or unreadable history yields
// fallback notes with Reason set.
func Synthesize(src CommitSource, version string, opts Options) Notes {
	if src == nil {
		return fallback(version, opts, "no version control history available")
	}

	tag := opts.Since
	if tag == "" {
		latest, err := src.LatestTag()
		if err != nil {
			if errors.Is(err, ErrNoTag) {
				return fallback(version, opts, "no previous release tag found")
			}
			return fallback(version, opts, fmt.Sprintf("finding previous tag: %v", err))
		}
		tag = latest
	}

	commits, err := src.CommitsSince(tag)
	if err != nil {
		return fallback(version, opts, fmt.Sprintf("reading history since %s: %v", tag, err))
	}
	logDebug("[notes] %d commits since %s", len(commits), tag)

	n := Notes{Version: version, Since: tag, Commits: commits, Grouped: opts.Grouped}
	if opts.MaxCommits > 0 && len(commits) > opts.MaxCommits {
		n.Commits = commits[:opts.MaxCommits]
		n.Omitted = len(commits) - opts.MaxCommits
	}
	return n
}

func fallback(version string, opts Options, reason string) Notes {
	logDebug("[notes] using fallback notes: %s", reason)
	return Notes{Version: version, Grouped: opts.Grouped, Fallback: true, Reason: reason}
}
