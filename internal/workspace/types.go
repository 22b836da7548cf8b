package workspace

import (
	"github.com/ariel-frischer/lockstep/internal/semver"
)

// Package is one discovered workspace member.
type Package struct {
	// Name is the package name, unique within the index.
	Name string
	// Dir is the absolute package directory.
	Dir string
	// ManifestPath is the absolute path to the package manifest.
	ManifestPath string
	// Version is the declared version. Writer replaces it after a successful write.
	Version semver.Version
	// Dependencies are the names of local (path) dependencies, sorted.
	// They may name packages that are not in the index.
	Dependencies []string
}

// DependsOn returns true if name is one of the package's local dependencies.
func (p *Package) DependsOn(name string) bool {
	for _, dep := range p.Dependencies {
		if dep == name {
			return true
		}
	}
	return false
}

// SkippedMember is a declared member that discovery could not load.
type SkippedMember struct {
	// Path is the member path relative to the workspace root.
	Path string
	// Reason explains why the member was skipped.
	Reason string
}

// PackageVersion pairs a package name with its version string.
type PackageVersion struct {
	Name    string
	Version string
}

// Index is the ordered collection of packages discovered in one workspace.
type Index struct {
	root         string
	manifestFile string
	packages     []*Package
	byName       map[string]*Package
	skipped      []SkippedMember
	expected     int

	// skippedManifests are the manifest paths of skipped members.
	skippedManifests []string
	// patterns are the root-relative member globs, expanded again on every
	// ManifestPaths call so new matches are noticed.
	patterns []string
	excluded map[string]bool
}

// Root returns the absolute workspace root directory.
func (idx *Index) Root() string {
	return idx.root
}

// ManifestFile returns the manifest file name used during discovery.
func (idx *Index) ManifestFile() string {
	return idx.manifestFile
}

// Len returns the number of discovered packages.
func (idx *Index) Len() int {
	return len(idx.packages)
}

// Packages returns the packages in discovery order.
// The returned slice is a copy; the records are shared.
func (idx *Index) Packages() []*Package {
	out := make([]*Package, len(idx.packages))
	copy(out, idx.packages)
	return out
}

// Names returns package names in discovery order.
func (idx *Index) Names() []string {
	names := make([]string, len(idx.packages))
	for i, p := range idx.packages {
		names[i] = p.Name
	}
	return names
}

// Get returns the package named name.
func (idx *Index) Get(name string) (*Package, bool) {
	p, ok := idx.byName[name]
	return p, ok
}

// Lookup returns the package named name or a PackageNotFoundError.
func (idx *Index) Lookup(name string) (*Package, error) {
	p, ok := idx.byName[name]
	if !ok {
		return nil, &PackageNotFoundError{Name: name, Available: idx.Names()}
	}
	return p, nil
}

// Versions returns name/version pairs in discovery order.
func (idx *Index) Versions() []PackageVersion {
	out := make([]PackageVersion, len(idx.packages))
	for i, p := range idx.packages {
		out[i] = PackageVersion{Name: p.Name, Version: p.Version.String()}
	}
	return out
}

// VersionMap returns a name -> version string mapping.
func (idx *Index) VersionMap() map[string]string {
	out := make(map[string]string, len(idx.packages))
	for _, p := range idx.packages {
		out[p.Name] = p.Version.String()
	}
	return out
}

// Skipped returns members that were declared but could not be loaded.
func (idx *Index) Skipped() []SkippedMember {
	out := make([]SkippedMember, len(idx.skipped))
	copy(out, idx.skipped)
	return out
}

// ExpectedMembers returns how many packages discovery attempted to load.
// It differs from Len when members were skipped.
func (idx *Index) ExpectedMembers() int {
	return idx.expected
}

// NewIndex builds an index from already-constructed packages.
// Duplicate names keep the first occurrence. It is intended for callers
// that assemble packages themselves, such as tests of graph consumers.
func NewIndex(root string, packages ...*Package) *Index {
	idx := &Index{
		root:     root,
		byName:   make(map[string]*Package, len(packages)),
		expected: len(packages),
	}
	for _, p := range packages {
		if _, dup := idx.byName[p.Name]; dup {
			idx.skipped = append(idx.skipped, SkippedMember{Path: p.Dir, Reason: "duplicate package name " + p.Name})
			continue
		}
		idx.add(p)
	}
	return idx
}

func (idx *Index) add(p *Package) {
	idx.packages = append(idx.packages, p)
	idx.byName[p.Name] = p
}
