package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the lockstep CLI.
// These templates ensure consistent, actionable error messages.

// InvalidVersion creates an error for a version string that is not MAJOR.MINOR.PATCH[-PRERELEASE].
func InvalidVersion(input, reason string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid version format %q: %s", input, reason),
		"lockstep update <MAJOR.MINOR.PATCH[-PRERELEASE]>",
		"Use three numeric components, e.g. 1.4.0",
		"Pre-releases use dot-separated alphanumeric identifiers, e.g. 1.4.0-beta.1",
		"Do not prefix the version with 'v'",
	)
}

// InvalidBumpKind creates an error for an unknown bump kind.
func InvalidBumpKind(provided string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid bump kind %q", provided),
		"lockstep bump <major|minor|patch>",
		"Choose one of: major, minor, patch",
	)
}

// UnknownPackage creates an error for a package name missing from the workspace.
func UnknownPackage(name string, available []string) *CLIError {
	remediation := []string{"Run 'lockstep show' to list workspace packages"}
	if len(available) > 0 {
		remediation = append(remediation, fmt.Sprintf("Available packages: %s", strings.Join(available, ", ")))
	}
	return NewArgumentError(fmt.Sprintf("package %q not found in workspace", name), remediation...)
}

// WorkspaceNotFound creates an error when no usable root manifest exists.
func WorkspaceNotFound(root string, cause error) *CLIError {
	e := NewPrerequisiteError(
		fmt.Sprintf("no workspace found at %s: %v", root, cause),
		"Run lockstep from the workspace root, or pass --workspace <dir>",
		"The root Cargo.toml must contain a [workspace] or [package] table",
	)
	e.Cause = cause
	return e
}

// PartialUpdate creates an error for an update that did not reach every package.
func PartialUpdate(version string, updated, failed, untouched []string, preflight bool) *CLIError {
	if preflight {
		return NewRuntimeError(
			fmt.Sprintf("update to %s aborted before writing any manifest; cannot update: %s",
				version, strings.Join(failed, ", ")),
			"Fix the listed manifests (permissions, literal version field) and re-run",
		)
	}

	msg := fmt.Sprintf("update to %s incomplete: failed: %s", version, strings.Join(failed, ", "))
	if len(updated) > 0 {
		msg += fmt.Sprintf("; updated: %s", strings.Join(updated, ", "))
	}
	if len(untouched) > 0 {
		msg += fmt.Sprintf("; untouched: %s", strings.Join(untouched, ", "))
	}
	return NewRuntimeError(
		msg,
		fmt.Sprintf("Fix the failure and re-run 'lockstep update %s'; re-running is safe", version),
		"Run 'lockstep check' to see the current versions",
	)
}

// CyclicDependency creates an error for a dependency cycle between packages.
func CyclicDependency(path []string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("cyclic dependency between workspace packages: %s", strings.Join(path, " -> ")),
		"Break the cycle by removing one of the path dependencies listed above",
		"A release order only exists for acyclic dependency graphs",
	)
}

// InconsistentVersions creates an error for `check --strict` on a workspace
// whose packages disagree.
func InconsistentVersions(mismatches []string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("workspace versions are inconsistent (%d packages)", len(mismatches)),
		"Run 'lockstep update <version>' to align every package",
	)
}

// InvalidConfig creates an error for configuration that failed to load.
func InvalidConfig(cause error) *CLIError {
	e := NewConfigError(
		cause.Error(),
		"Run 'lockstep config show' to inspect effective values",
		"Check .lockstep/config.yml and ~/.config/lockstep/config.yml",
	)
	e.Cause = cause
	return e
}
