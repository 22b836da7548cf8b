package config

import "sort"

// ConfigKeySchema documents a known configuration key.
type ConfigKeySchema struct {
	Path        string // Dotted key path (e.g., "notes.tag_prefix")
	Type        string // Value type shown in help output
	Description string // Human-readable description for help text
}

// KnownKeys is the registry of all known configuration keys.
var KnownKeys = map[string]ConfigKeySchema{
	"workspace": {
		Path: "workspace", Type: "string",
		Description: "Default workspace root (empty = current directory)",
	},
	"manifest_file": {
		Path: "manifest_file", Type: "string",
		Description: "Manifest file name in every package",
	},
	"dependency_tables": {
		Path: "dependency_tables", Type: "list",
		Description: "Manifest tables scanned for internal dependencies",
	},
	"include_root_package": {
		Path: "include_root_package", Type: "bool",
		Description: "Treat a root [package] as a workspace member",
	},
	"state_dir": {
		Path: "state_dir", Type: "string",
		Description: "Directory for the release history file",
	},
	"max_history_entries": {
		Path: "max_history_entries", Type: "int",
		Description: "Maximum release history entries to retain (0 = unlimited)",
	},
	"strict_check": {
		Path: "strict_check", Type: "bool",
		Description: "Make 'check' exit non-zero when versions disagree",
	},
	"notes.tag_prefix": {
		Path: "notes.tag_prefix", Type: "string",
		Description: "Only consider tags with this prefix as release markers",
	},
	"notes.max_commits": {
		Path: "notes.max_commits", Type: "int",
		Description: "Maximum commits listed in release notes (0 = unlimited)",
	},
	"notes.grouped": {
		Path: "notes.grouped", Type: "bool",
		Description: "Group release note entries by Conventional Commit type",
	},
	"watch.debounce": {
		Path: "watch.debounce", Type: "duration",
		Description: "Quiet period after a manifest change before re-checking",
	},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// SortedKeys returns the known key paths in sorted order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnknownKeys returns the keys not in KnownKeys, sorted.
func UnknownKeys(keys []string) []string {
	var unknown []string
	for _, key := range keys {
		if _, ok := KnownKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}
