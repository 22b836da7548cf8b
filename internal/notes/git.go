package notes

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// GitSource reads tags and commits from a git repository using go-git.
type GitSource struct {
	repo *git.Repository
	// tagPrefix restricts LatestTag to tags starting with this prefix.
	tagPrefix string
}

// OpenGit opens the repository containing dir. Parent directories are
// searched for the .git directory.
func OpenGit(dir, tagPrefix string) (*GitSource, error) {
	logDebug("[notes] opening repository at %s", dir)

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	return &GitSource{repo: repo, tagPrefix: tagPrefix}, nil
}

// NewGitSource wraps an already opened repository.
func NewGitSource(repo *git.Repository, tagPrefix string) *GitSource {
	return &GitSource{repo: repo, tagPrefix: tagPrefix}
}

// LatestTag returns the tag on the commit nearest to HEAD, searching history
// breadth-first. When several tags point at the same commit the greatest
// name wins.
func (s *GitSource) LatestTag() (string, error) {
	tagged, err := s.taggedCommits()
	if err != nil {
		return "", err
	}
	if len(tagged) == 0 {
		return "", ErrNoTag
	}

	head, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	iter, err := s.repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderBSF})
	if err != nil {
		return "", fmt.Errorf("walking history: %w", err)
	}
	defer iter.Close()

	var found string
	err = iter.ForEach(func(c *object.Commit) error {
		if names, ok := tagged[c.Hash]; ok {
			found = names[len(names)-1]
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking history: %w", err)
	}
	if found == "" {
		return "", ErrNoTag
	}

	logDebug("[notes] latest tag: %s", found)
	return found, nil
}

// CommitsSince returns commits reachable from HEAD but not from tag, newest
// first by committer time.
func (s *GitSource) CommitsSince(tag string) ([]Commit, error) {
	base, err := s.resolveTag(tag)
	if err != nil {
		return nil, err
	}

	excluded := make(map[plumbing.Hash]bool)
	baseIter, err := s.repo.Log(&git.LogOptions{From: base})
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", tag, err)
	}
	err = baseIter.ForEach(func(c *object.Commit) error {
		excluded[c.Hash] = true
		return nil
	})
	baseIter.Close()
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", tag, err)
	}

	head, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD reference: %w", err)
	}

	iter, err := s.repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if excluded[c.Hash] {
			return nil
		}
		commits = append(commits, Commit{
			Hash:    c.Hash.String(),
			Subject: subject(c.Message),
			When:    c.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}
	return commits, nil
}

// taggedCommits maps commit hashes to the sorted names of tags on them.
func (s *GitSource) taggedCommits() (map[plumbing.Hash][]string, error) {
	refs, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer refs.Close()

	tagged := make(map[plumbing.Hash][]string)
	for {
		ref, err := refs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing tags: %w", err)
		}

		name := ref.Name().Short()
		if !strings.HasPrefix(name, s.tagPrefix) {
			continue
		}
		hash, err := s.peel(ref.Hash())
		if err != nil {
			logDebug("[notes] skipping tag %s: %v", name, err)
			continue
		}
		tagged[hash] = append(tagged[hash], name)
	}

	for h := range tagged {
		sort.Strings(tagged[h])
	}
	return tagged, nil
}

// resolveTag returns the commit a tag points to. Lightweight and annotated
// tags are supported.
func (s *GitSource) resolveTag(name string) (plumbing.Hash, error) {
	ref, err := s.repo.Tag(name)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving tag %s: %w", name, err)
	}
	return s.peel(ref.Hash())
}

// peel follows an annotated tag object to its commit. Hashes that are not
// tag objects are returned unchanged.
func (s *GitSource) peel(hash plumbing.Hash) (plumbing.Hash, error) {
	tagObj, err := s.repo.TagObject(hash)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return hash, nil
	}
	if err != nil {
		return plumbing.ZeroHash, err
	}

	c, err := tagObj.Commit()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("tag %s does not point to a commit: %w", tagObj.Name, err)
	}
	return c.Hash, nil
}

// subject returns the first line of a commit message.
func subject(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(line)
}
