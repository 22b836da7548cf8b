// lockstep - Coordinated versioning and release ordering for Cargo workspaces
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/lockstep

// Package config provides hierarchical configuration management for lockstep using koanf.
// Configuration is loaded with priority: environment variables > project config (.lockstep/config.yml)
// > user config (~/.config/lockstep/config.yml) > defaults. Project config may also be written
// as JSON (.lockstep/config.json); the YAML file wins when both exist.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "LOCKSTEP_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the lockstep CLI tool configuration
type Configuration struct {
	// Workspace is the default workspace root. Empty means the current directory.
	// The --workspace flag takes precedence.
	Workspace string `koanf:"workspace"`

	// ManifestFile is the per-package manifest file name.
	ManifestFile string `koanf:"manifest_file" validate:"required,excludesall=/\\"`

	// DependencyTables lists the manifest tables scanned for internal dependencies.
	DependencyTables []string `koanf:"dependency_tables" validate:"required,min=1,dive,oneof=dependencies dev-dependencies build-dependencies"`

	// IncludeRootPackage treats a [package] in the root manifest as a workspace member.
	IncludeRootPackage bool `koanf:"include_root_package"`

	// StateDir holds the release history file.
	StateDir string `koanf:"state_dir" validate:"required"`

	// MaxHistoryEntries sets the maximum number of history entries to retain.
	// Oldest entries are pruned when this limit is exceeded. Zero keeps everything.
	MaxHistoryEntries int `koanf:"max_history_entries" validate:"min=0"`

	// StrictCheck makes `lockstep check` exit non-zero on inconsistent versions.
	StrictCheck bool `koanf:"strict_check"`

	Notes NotesConfig `koanf:"notes"`
	Watch WatchConfig `koanf:"watch"`

	sources map[string]ConfigSource
	values  map[string]interface{}
}

// NotesConfig configures release note synthesis.
type NotesConfig struct {
	// TagPrefix restricts the previous-release tag search to tags with this prefix.
	TagPrefix string `koanf:"tag_prefix"`
	// MaxCommits limits listed commits. Zero means unlimited.
	MaxCommits int `koanf:"max_commits" validate:"min=0"`
	// Grouped renders Conventional Commit sections.
	Grouped bool `koanf:"grouped"`
}

// WatchConfig configures `check --watch`.
type WatchConfig struct {
	// Debounce is the quiet period after a manifest event before re-checking.
	Debounce time.Duration `koanf:"debounce" validate:"min=0"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .lockstep/config.yml)
	ProjectConfigPath string
	// ProjectDir is the directory containing .lockstep/ (default: current directory)
	ProjectDir string
	// UserConfigPath overrides the user config path (for testing)
	UserConfigPath string
	// SkipUserConfig ignores the user config file
	SkipUserConfig bool
	// WarningWriter receives warnings (default: os.Stderr)
	WarningWriter io.Writer
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	l := &loader{
		k:       koanf.New("."),
		sources: make(map[string]ConfigSource),
		warn:    opts.WarningWriter,
	}
	if l.warn == nil {
		l.warn = os.Stderr
	}

	defaults := koanf.New(".")
	for key, value := range GetDefaults() {
		defaults.Set(key, value)
	}
	l.merge(defaults, SourceDefault)

	if !opts.SkipUserConfig {
		if err := l.loadUser(opts.UserConfigPath); err != nil {
			return nil, err
		}
	}
	if err := l.loadProject(opts); err != nil {
		return nil, err
	}
	if err := l.loadEnv(); err != nil {
		return nil, err
	}

	return finalizeConfig(l.k, l.sources)
}

// loader accumulates configuration layers and records which layer set each key.
type loader struct {
	k       *koanf.Koanf
	sources map[string]ConfigSource
	warn    io.Writer
}

// loadUser loads ~/.config/lockstep/config.yml when it exists.
func (l *loader) loadUser(customPath string) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := l.loadFile(path, SourceUser); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProject loads the project config. YAML is preferred; JSON is used
// when only the JSON file exists.
func (l *loader) loadProject(opts LoadOptions) error {
	yamlPath := opts.ProjectConfigPath
	if yamlPath == "" {
		yamlPath = filepath.Join(opts.ProjectDir, ProjectConfigPath())
	}
	jsonPath := filepath.Join(opts.ProjectDir, ProjectJSONConfigPath())
	jsonExists := fileExists(jsonPath)

	switch {
	case fileExists(yamlPath):
		if err := l.loadFile(yamlPath, SourceProject); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		if jsonExists && opts.ProjectConfigPath == "" {
			fmt.Fprintf(l.warn, "Warning: Both %s and %s exist; using %s\n", yamlPath, jsonPath, yamlPath)
		}
	case jsonExists:
		if err := l.loadFile(jsonPath, SourceProject); err != nil {
			return fmt.Errorf("loading project JSON config: %w", err)
		}
	}
	return nil
}

// loadFile loads one config file, choosing the parser by extension. YAML
// files are syntax-checked first so errors carry line numbers.
func (l *loader) loadFile(path string, src ConfigSource) error {
	var parser koanf.Parser = yaml.Parser()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = json.Parser()
	} else if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", src, err)
	}

	layer := koanf.New(".")
	if err := layer.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", src, path, err)
	}
	for _, key := range UnknownKeys(layer.Keys()) {
		fmt.Fprintf(l.warn, "Warning: unknown config key %q in %s\n", key, path)
	}
	l.merge(layer, src)
	return nil
}

// loadEnv applies LOCKSTEP_* environment overrides.
func (l *loader) loadEnv() error {
	layer := koanf.New(".")
	if err := layer.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	l.merge(layer, SourceEnv)
	return nil
}

// merge merges layer and attributes its keys to src.
func (l *loader) merge(layer *koanf.Koanf, src ConfigSource) {
	for _, key := range layer.Keys() {
		l.sources[key] = src
	}
	l.k.Merge(layer)
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf, sources map[string]ConfigSource) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.StateDir = expandHomePath(cfg.StateDir)
	cfg.Workspace = expandHomePath(cfg.Workspace)
	cfg.sources = sources
	cfg.values = k.All()

	return &cfg, nil
}

// Source returns where the value for key came from.
func (c *Configuration) Source(key string) ConfigSource {
	if src, ok := c.sources[key]; ok {
		return src
	}
	return SourceDefault
}

// Value returns the merged raw value for key.
func (c *Configuration) Value(key string) interface{} {
	return c.values[key]
}

// Keys returns every loaded key in sorted order.
func (c *Configuration) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for key := range c.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variables to config keys and values.
// A double underscore separates nesting levels and comma-separated values
// become lists.
// Example: LOCKSTEP_NOTES__TAG_PREFIX -> notes.tag_prefix
func envTransform(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")

	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}
	return key, value
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
