package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/lockstep/internal/manifest"
	"github.com/ariel-frischer/lockstep/internal/semver"
)

// Writer persists new versions into package manifests and mirrors them in
// the index.
type Writer struct {
	index *Index
}

// NewWriter returns a Writer for idx.
func NewWriter(idx *Index) *Writer {
	return &Writer{index: idx}
}

// pendingWrite is a manifest rewrite computed during preflight.
type pendingWrite struct {
	pkg  *Package
	data []byte
	mode os.FileMode
}

// SetVersion writes v into the manifest of the named package and updates
// its record. Returns PackageNotFoundError for unknown names.
func (w *Writer) SetVersion(name string, v semver.Version) error {
	pkg, err := w.index.Lookup(name)
	if err != nil {
		return err
	}

	pending, prepErr := prepare(pkg, v)
	if prepErr != nil {
		return prepErr
	}
	if writeErr := commit(pending, v); writeErr != nil {
		return writeErr
	}
	return nil
}

// UpdateAll sets every package to v.
//
// The update runs in two phases. Preflight reads and rewrites every manifest
// in memory and checks that each file is writable; if any package fails
// there, nothing is written. Commit then writes packages sequentially in
// index order and stops at the first failure. Written packages are not
// rolled back, so a PartialUpdateError lists updated, failed and untouched
// packages. Running UpdateAll again with the same version is safe.
func (w *Writer) UpdateAll(v semver.Version) error {
	packages := w.index.packages

	pending := make([]*pendingWrite, 0, len(packages))
	var failures []*VersionWriteError
	for _, pkg := range packages {
		p, err := prepare(pkg, v)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		pending = append(pending, p)
	}

	if len(failures) > 0 {
		return &PartialUpdateError{
			Version:   v.String(),
			Failed:    failures,
			Untouched: namesOf(packages),
			Preflight: true,
		}
	}

	var updated []string
	for i, p := range pending {
		if err := commit(p, v); err != nil {
			return &PartialUpdateError{
				Version:   v.String(),
				Updated:   updated,
				Failed:    []*VersionWriteError{err},
				Untouched: namesOf(packages[i+1:]),
			}
		}
		updated = append(updated, p.pkg.Name)
	}

	logDebug("[workspace] updated %d packages to %s", len(updated), v)
	return nil
}

// prepare computes the rewritten manifest for pkg without touching disk.
func prepare(pkg *Package, v semver.Version) (*pendingWrite, *VersionWriteError) {
	fail := func(err error) *VersionWriteError {
		return &VersionWriteError{Package: pkg.Name, ManifestPath: pkg.ManifestPath, Version: v.String(), Err: err}
	}

	info, err := os.Stat(pkg.ManifestPath)
	if err != nil {
		return nil, fail(err)
	}

	data, err := os.ReadFile(pkg.ManifestPath)
	if err != nil {
		return nil, fail(err)
	}

	out, err := manifest.SetVersion(data, v.String())
	if err != nil {
		return nil, fail(err)
	}

	if err := checkWritable(pkg.ManifestPath); err != nil {
		return nil, fail(err)
	}

	return &pendingWrite{pkg: pkg, data: out, mode: info.Mode().Perm()}, nil
}

// commit writes a prepared manifest and updates the in-memory record.
func commit(p *pendingWrite, v semver.Version) *VersionWriteError {
	if err := atomicWriteFile(p.pkg.ManifestPath, p.data, p.mode); err != nil {
		return &VersionWriteError{Package: p.pkg.Name, ManifestPath: p.pkg.ManifestPath, Version: v.String(), Err: err}
	}
	p.pkg.Version = v
	logDebug("[workspace] wrote %s = %s", p.pkg.Name, v)
	return nil
}

// checkWritable verifies the manifest can be opened for writing and its
// directory accepts the temp file used for the atomic replace.
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("manifest not writable: %w", err)
	}
	f.Close()

	probe, err := os.CreateTemp(filepath.Dir(path), ".lockstep-probe-*")
	if err != nil {
		return fmt.Errorf("directory not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// atomicWriteFile writes data to path using temp file + rename pattern.
// Ensures no partial writes occur on crash.
func atomicWriteFile(path string, data []byte, mode os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func namesOf(packages []*Package) []string {
	names := make([]string, len(packages))
	for i, p := range packages {
		names[i] = p.Name
	}
	return names
}
