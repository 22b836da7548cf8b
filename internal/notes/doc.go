// Package notes synthesizes release notes from version-control history.
//
// A CommitSource supplies the nearest release tag and the commits made since
// it. GitSource implements CommitSource on top of go-git, so no git binary is
// required. Synthesize never fails: when no tag is reachable or the history
// cannot be read it produces a minimal fallback note instead.
package notes
