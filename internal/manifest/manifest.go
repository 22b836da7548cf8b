// Package manifest reads Cargo.toml manifests and rewrites their package
// version in place. Parsing is done with go-toml; rewriting edits only the
// version string literal so that comments and layout survive.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the manifest file name looked up in every package directory.
const DefaultFileName = "Cargo.toml"

// DefaultDependencyTables lists the dependency tables scanned for local references.
var DefaultDependencyTables = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// Manifest is the subset of a Cargo manifest lockstep cares about.
type Manifest struct {
	// Name is package.name, empty when absent.
	Name string
	// Version is the literal package.version string, empty when absent or inherited.
	Version string
	// VersionInherited is true for `version.workspace = true`.
	VersionInherited bool
	// HasPackage is true when a [package] table is present.
	HasPackage bool
	// Workspace is the [workspace] table, nil for non-root manifests.
	Workspace *Workspace

	deps       map[string]map[string]any
	targetDeps map[string]map[string]map[string]any
}

// Workspace is the [workspace] table of a root manifest.
type Workspace struct {
	Members []string
	Exclude []string
	// LocalDependencies maps [workspace.dependencies] keys that carry a path
	// to the referenced package name.
	LocalDependencies map[string]string
}

// Dependency is one dependency declaration that points into the workspace
// or may do so once workspace inheritance is resolved.
type Dependency struct {
	// Key is the entry key as written in the table.
	Key string
	// Name is the referenced package name (the `package` key when renamed).
	Name string
	// Path is the local path, empty for `workspace = true` entries.
	Path string
	// Table is the dependency table the entry came from.
	Table string
	// Workspace is true for `{ workspace = true }` entries.
	Workspace bool
}

// ParseError reports a manifest that is not valid TOML.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing manifest: %v", e.Err)
	}
	return fmt.Sprintf("parsing manifest %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying TOML error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

type document struct {
	Package           map[string]any            `toml:"package"`
	Workspace         *workspaceTable           `toml:"workspace"`
	Dependencies      map[string]any            `toml:"dependencies"`
	DevDependencies   map[string]any            `toml:"dev-dependencies"`
	BuildDependencies map[string]any            `toml:"build-dependencies"`
	Target            map[string]map[string]any `toml:"target"`
}

type workspaceTable struct {
	Members      []string       `toml:"members"`
	Exclude      []string       `toml:"exclude"`
	Dependencies map[string]any `toml:"dependencies"`
}

// ReadFile reads and parses the manifest at path.
// The raw bytes are returned alongside so callers can rewrite them.
func ReadFile(path string) (*Manifest, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return nil, data, err
	}
	return m, data, nil
}

// Parse parses manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	m := &Manifest{
		HasPackage: doc.Package != nil,
		deps: map[string]map[string]any{
			"dependencies":       doc.Dependencies,
			"dev-dependencies":   doc.DevDependencies,
			"build-dependencies": doc.BuildDependencies,
		},
		targetDeps: make(map[string]map[string]map[string]any),
	}

	if doc.Package != nil {
		m.Name, _ = doc.Package["name"].(string)
		switch v := doc.Package["version"].(type) {
		case string:
			m.Version = v
		case map[string]any:
			inherited, _ := v["workspace"].(bool)
			m.VersionInherited = inherited
		}
	}

	if doc.Workspace != nil {
		m.Workspace = &Workspace{
			Members:           doc.Workspace.Members,
			Exclude:           doc.Workspace.Exclude,
			LocalDependencies: localWorkspaceDependencies(doc.Workspace.Dependencies),
		}
	}

	for cfg, tables := range doc.Target {
		m.targetDeps[cfg] = make(map[string]map[string]any)
		for table, entries := range tables {
			if typed, ok := entries.(map[string]any); ok {
				m.targetDeps[cfg][table] = typed
			}
		}
	}

	return m, nil
}

// localWorkspaceDependencies returns key -> package name for path entries.
func localWorkspaceDependencies(entries map[string]any) map[string]string {
	local := make(map[string]string)
	for key, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if path, _ := entry["path"].(string); path == "" {
			continue
		}
		local[key] = packageName(key, entry)
	}
	return local
}

// Dependencies returns the path and workspace-inherited dependency entries
// found in the given tables, including [target.*] variants, sorted by
// table then key.
func (m *Manifest) Dependencies(tables []string) []Dependency {
	var deps []Dependency

	for _, table := range tables {
		deps = append(deps, collectDependencies(table, m.deps[table])...)
	}

	cfgs := make([]string, 0, len(m.targetDeps))
	for cfg := range m.targetDeps {
		cfgs = append(cfgs, cfg)
	}
	sort.Strings(cfgs)
	for _, cfg := range cfgs {
		for _, table := range tables {
			deps = append(deps, collectDependencies(table, m.targetDeps[cfg][table])...)
		}
	}

	return deps
}

func collectDependencies(table string, entries map[string]any) []Dependency {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var deps []Dependency
	for _, key := range keys {
		entry, ok := entries[key].(map[string]any)
		if !ok {
			// Plain `name = "1.0"` entries are registry dependencies.
			continue
		}

		path, _ := entry["path"].(string)
		inherited, _ := entry["workspace"].(bool)
		if path == "" && !inherited {
			continue
		}

		deps = append(deps, Dependency{
			Key:       key,
			Name:      packageName(key, entry),
			Path:      path,
			Table:     table,
			Workspace: inherited && path == "",
		})
	}
	return deps
}

func packageName(key string, entry map[string]any) string {
	if renamed, ok := entry["package"].(string); ok && renamed != "" {
		return renamed
	}
	return key
}
