package workspace

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/zeebo/blake3"
)

// ManifestPaths returns the root manifest, every package manifest, the
// manifests of skipped members and the manifest location of every directory
// the member globs match right now, without duplicates.
func (idx *Index) ManifestPaths() []string {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	add(filepath.Join(idx.root, idx.manifestFile))
	for _, p := range idx.packages {
		add(p.ManifestPath)
	}
	for _, p := range idx.skippedManifests {
		add(p)
	}
	for _, dir := range idx.globMatches() {
		add(filepath.Join(dir, idx.manifestFile))
	}
	return paths
}

// WatchDirs returns the directories whose entries can change the workspace:
// the root, every package and skipped member directory, and the fixed prefix
// of every member glob.
func (idx *Index) WatchDirs() []string {
	seen := make(map[string]bool)
	var dirs []string

	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}

	add(idx.root)
	for _, p := range idx.packages {
		add(p.Dir)
	}
	for _, p := range idx.skippedManifests {
		add(filepath.Dir(p))
	}
	for _, pattern := range idx.patterns {
		add(patternBase(idx.root, pattern))
	}
	return dirs
}

// globMatches expands the member globs against the current file system.
func (idx *Index) globMatches() []string {
	var dirs []string
	for _, pattern := range idx.patterns {
		matches, err := filepath.Glob(filepath.Join(idx.root, filepath.FromSlash(pattern)))
		if err != nil {
			continue
		}
		for _, match := range matches {
			rel, err := filepath.Rel(idx.root, match)
			if err != nil || idx.excluded[cleanRel(rel)] {
				continue
			}
			if info, err := os.Stat(match); err == nil && info.IsDir() {
				dirs = append(dirs, match)
			}
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Fingerprint returns a blake3 digest over the contents of every manifest in
// the workspace. Missing files contribute their path only, so creating or
// deleting a manifest also changes the fingerprint.
func Fingerprint(idx *Index) string {
	h := blake3.New()
	for _, path := range idx.ManifestPaths() {
		h.Write([]byte(path))
		h.Write([]byte{0})
		if data, err := os.ReadFile(path); err == nil {
			h.Write(data)
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
