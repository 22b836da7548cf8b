package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/lockstep/config.yml
// - macOS: ~/Library/Application Support/lockstep/config.yml
// - Windows: %APPDATA%\lockstep\config.yml
func UserConfigPath() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lockstep"), nil
}

// ProjectConfigDir returns the project-level config directory name.
func ProjectConfigDir() string {
	return ".lockstep"
}

// ProjectConfigPath returns the project-level YAML config path relative to
// the project directory.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), "config.yml")
}

// ProjectJSONConfigPath returns the project-level JSON config path relative
// to the project directory.
func ProjectJSONConfigPath() string {
	return filepath.Join(ProjectConfigDir(), "config.json")
}
