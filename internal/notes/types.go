package notes

import (
	"errors"
	"strings"
	"time"
)

// ErrNoTag is returned by CommitSource.LatestTag when no tag is reachable
// from the current position.
var ErrNoTag = errors.New("no tag reachable from HEAD")

// shortHashLen matches the abbreviated hash width of `git log --oneline`.
const shortHashLen = 7

// Commit is a single history entry.
type Commit struct {
	Hash    string
	Subject string
	When    time.Time
}

// ShortHash returns the abbreviated commit hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) > shortHashLen {
		return c.Hash[:shortHashLen]
	}
	return c.Hash
}

// Oneline formats the commit as "<short-hash> <subject>".
func (c Commit) Oneline() string {
	return strings.TrimSpace(c.ShortHash() + " " + c.Subject)
}

// CommitSource provides the history used to build release notes.
type CommitSource interface {
	// LatestTag returns the nearest tag reachable from the current position,
	// or ErrNoTag.
	LatestTag() (string, error)
	// CommitsSince returns commits reachable from the current position but
	// not from tag, newest first.
	CommitsSince(tag string) ([]Commit, error)
}

// Options tunes release note synthesis.
type Options struct {
	// Since overrides the detected marker tag.
	Since string
	// MaxCommits limits the number of listed commits. Zero means unlimited.
	MaxCommits int
	// Grouped renders commits in Conventional Commit sections.
	Grouped bool
}

// Notes is the synthesized content for one release.
type Notes struct {
	Version string
	// Since is the marker tag the commits were collected from. Empty for
	// fallback notes.
	Since   string
	Commits []Commit
	// Omitted counts commits dropped by Options.MaxCommits.
	Omitted int
	Grouped bool
	// Fallback is true when history was unavailable.
	Fallback bool
	// Reason explains why the fallback was used.
	Reason string
}
