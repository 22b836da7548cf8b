package config

import "time"

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# Lockstep Configuration
# See 'lockstep config show' for effective values and their sources

# Workspace settings
workspace: ""                         # Default workspace root (empty = current directory)
manifest_file: Cargo.toml             # Manifest file name in every package
dependency_tables:                    # Tables scanned for internal dependencies
  - dependencies
  - dev-dependencies
  - build-dependencies
include_root_package: true            # Treat a root [package] as a member
strict_check: false                   # 'check' exits non-zero when versions disagree

# History settings
state_dir: ~/.lockstep/state          # Directory for the release history file
max_history_entries: 500              # Max history entries to retain (0 = unlimited)

# Release notes
notes:
  tag_prefix: ""                      # Only consider tags with this prefix (e.g. "v")
  max_commits: 0                      # Max commits listed (0 = unlimited)
  grouped: false                      # Group commits by Conventional Commit type

# Watch mode
watch:
  debounce: 300ms                     # Quiet period before re-checking
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"workspace":     "",
		"manifest_file": "Cargo.toml",
		// dependency_tables: Tables scanned for path and workspace dependencies.
		// [target.*] variants of each table are scanned as well.
		"dependency_tables":    []string{"dependencies", "dev-dependencies", "build-dependencies"},
		"include_root_package": true,
		"state_dir":            "~/.lockstep/state",
		// max_history_entries: Maximum number of release history entries to retain.
		"max_history_entries": 500,
		"strict_check":        false,
		"notes": map[string]interface{}{
			"tag_prefix":  "",
			"max_commits": 0,
			"grouped":     false,
		},
		"watch": map[string]interface{}{
			"debounce": (300 * time.Millisecond).String(),
		},
	}
}
