package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-frischer/lockstep/internal/manifest"
	"github.com/ariel-frischer/lockstep/internal/semver"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for workspace operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Options configures discovery.
type Options struct {
	// ManifestFile is the manifest file name in every package directory.
	ManifestFile string
	// DependencyTables are the manifest tables scanned for local dependencies.
	DependencyTables []string
	// IncludeRootPackage adds the root [package], if any, as the first member.
	IncludeRootPackage bool
}

// DefaultOptions returns the options used for a standard Cargo workspace.
func DefaultOptions() Options {
	return Options{
		ManifestFile:       manifest.DefaultFileName,
		DependencyTables:   manifest.DefaultDependencyTables,
		IncludeRootPackage: true,
	}
}

func (o Options) withDefaults() Options {
	if o.ManifestFile == "" {
		o.ManifestFile = manifest.DefaultFileName
	}
	if len(o.DependencyTables) == 0 {
		o.DependencyTables = manifest.DefaultDependencyTables
	}
	return o
}

// Discover builds the Index for the workspace rooted at root.
// It fails only when the root manifest cannot be loaded; members that cannot
// be parsed are recorded in Index.Skipped.
func Discover(root string, opts Options) (*Index, error) {
	opts = opts.withDefaults()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &WorkspaceNotFoundError{Root: root, Err: err}
	}

	rootPath := filepath.Join(absRoot, opts.ManifestFile)
	rootManifest, _, err := manifest.ReadFile(rootPath)
	if err != nil {
		return nil, &WorkspaceNotFoundError{Root: absRoot, ManifestPath: rootPath, Err: err}
	}
	if rootManifest.Workspace == nil && !rootManifest.HasPackage {
		return nil, &WorkspaceNotFoundError{
			Root:         absRoot,
			ManifestPath: rootPath,
			Err:          errors.New("root manifest declares neither [workspace] nor [package]"),
		}
	}

	logDebug("[workspace] discovering from %s", rootPath)

	d := &discovery{
		opts: opts,
		index: &Index{
			root:         absRoot,
			manifestFile: opts.ManifestFile,
			byName:       make(map[string]*Package),
		},
	}

	if rootManifest.Workspace != nil {
		d.workspaceLocal = rootManifest.Workspace.LocalDependencies
	}

	if opts.IncludeRootPackage && rootManifest.HasPackage {
		d.index.expected++
		d.addPackage(".", absRoot, rootPath, rootManifest)
	}

	if rootManifest.Workspace != nil {
		for _, member := range expandMembers(absRoot, rootManifest.Workspace, d) {
			d.index.expected++
			d.loadMember(member)
		}
	}

	logDebug("[workspace] discovered %d of %d packages (%d skipped)",
		d.index.Len(), d.index.expected, len(d.index.skipped))
	return d.index, nil
}

type discovery struct {
	opts           Options
	index          *Index
	workspaceLocal map[string]string
}

// skip records a member that could not be loaded. manifestPath is where its
// manifest is expected, or empty when no such path exists.
func (d *discovery) skip(path, manifestPath, format string, args ...any) {
	reason := fmt.Sprintf(format, args...)
	logDebug("[workspace] skipping %s: %s", path, reason)
	d.index.skipped = append(d.index.skipped, SkippedMember{Path: path, Reason: reason})
	if manifestPath != "" {
		d.index.skippedManifests = append(d.index.skippedManifests, manifestPath)
	}
}

// loadMember reads one member directory (relative to the root).
func (d *discovery) loadMember(rel string) {
	dir := filepath.Join(d.index.root, filepath.FromSlash(rel))
	path := filepath.Join(dir, d.opts.ManifestFile)

	m, _, err := manifest.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			d.skip(rel, path, "no %s found", d.opts.ManifestFile)
			return
		}
		d.skip(rel, path, "unparseable manifest: %v", err)
		return
	}

	d.addPackage(rel, dir, path, m)
}

func (d *discovery) addPackage(rel, dir, path string, m *manifest.Manifest) {
	switch {
	case !m.HasPackage:
		d.skip(rel, path, "manifest has no [package] table")
		return
	case m.Name == "":
		d.skip(rel, path, "manifest has no package name")
		return
	case m.VersionInherited:
		d.skip(rel, path, "package %s inherits its version from the workspace", m.Name)
		return
	case m.Version == "":
		d.skip(rel, path, "package %s has no version", m.Name)
		return
	}

	v, err := semver.Parse(m.Version)
	if err != nil {
		d.skip(rel, path, "package %s: %v", m.Name, err)
		return
	}

	if _, dup := d.index.byName[m.Name]; dup {
		d.skip(rel, path, "duplicate package name %s", m.Name)
		return
	}

	pkg := &Package{
		Name:         m.Name,
		Dir:          dir,
		ManifestPath: path,
		Version:      v,
		Dependencies: d.localDependencies(m),
	}
	d.index.add(pkg)
	logDebug("[workspace] loaded %s %s (%d local deps)", pkg.Name, pkg.Version, len(pkg.Dependencies))
}

// localDependencies returns the sorted, de-duplicated local dependency names
// of m. Workspace-inherited entries count only when the root declares them
// with a path.
func (d *discovery) localDependencies(m *manifest.Manifest) []string {
	seen := make(map[string]bool)
	var names []string

	for _, dep := range m.Dependencies(d.opts.DependencyTables) {
		name := dep.Name
		if dep.Workspace {
			local, ok := d.workspaceLocal[dep.Key]
			if !ok {
				continue
			}
			name = local
		}
		if name == m.Name || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// expandMembers resolves member entries (literal paths or glob patterns)
// into root-relative directories, in declaration order, without duplicates
// and without excluded paths.
func expandMembers(root string, ws *manifest.Workspace, d *discovery) []string {
	excluded := make(map[string]bool, len(ws.Exclude))
	for _, ex := range ws.Exclude {
		excluded[cleanRel(ex)] = true
	}
	d.index.excluded = excluded

	seen := make(map[string]bool)
	var members []string

	add := func(rel string) {
		rel = cleanRel(rel)
		if seen[rel] || excluded[rel] || rel == "." {
			return
		}
		seen[rel] = true
		members = append(members, rel)
	}

	for _, entry := range ws.Members {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if !isGlob(entry) {
			if _, err := os.Stat(filepath.Join(root, entry)); err != nil {
				d.index.expected++
				rel := cleanRel(entry)
				d.skip(rel, filepath.Join(root, filepath.FromSlash(rel), d.opts.ManifestFile), "member path does not exist")
				continue
			}
			add(entry)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(entry)))
		if err != nil {
			d.index.expected++
			d.skip(entry, "", "invalid member pattern: %v", err)
			continue
		}
		d.index.patterns = append(d.index.patterns, cleanRel(entry))
		sort.Strings(matches)
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(root, match)
			if err != nil {
				continue
			}
			add(rel)
		}
	}

	return members
}

// patternBase returns the directory of pattern up to its first glob segment.
func patternBase(root, pattern string) string {
	var fixed []string
	for _, seg := range strings.Split(pattern, "/") {
		if isGlob(seg) {
			break
		}
		fixed = append(fixed, seg)
	}
	return filepath.Join(root, filepath.FromSlash(strings.Join(fixed, "/")))
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

func cleanRel(p string) string {
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
}
