package workspace

import (
	"fmt"
	"strings"
)

// WorkspaceNotFoundError is returned when the root manifest is missing,
// unreadable, or does not describe a workspace or package.
type WorkspaceNotFoundError struct {
	// Root is the workspace root that was searched.
	Root string
	// ManifestPath is the expected root manifest path.
	ManifestPath string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *WorkspaceNotFoundError) Error() string {
	return fmt.Sprintf("workspace not found at %s: %v", e.Root, e.Err)
}

// Unwrap returns the underlying cause.
func (e *WorkspaceNotFoundError) Unwrap() error {
	return e.Err
}

// PackageNotFoundError is returned when a named package is not in the index.
type PackageNotFoundError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *PackageNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("package %q not found (workspace has no packages)", e.Name)
	}
	return fmt.Sprintf("package %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// VersionWriteError is returned when a package manifest could not be rewritten.
type VersionWriteError struct {
	Package      string
	ManifestPath string
	Version      string
	Err          error
}

// Error implements the error interface.
func (e *VersionWriteError) Error() string {
	return fmt.Sprintf("setting %s to %s in %s: %v", e.Package, e.Version, e.ManifestPath, e.Err)
}

// Unwrap returns the underlying cause.
func (e *VersionWriteError) Unwrap() error {
	return e.Err
}

// PartialUpdateError reports an UpdateAll run that did not update every package.
// Packages in Updated were written and are not rolled back; packages in
// Untouched were never attempted.
type PartialUpdateError struct {
	Version   string
	Updated   []string
	Failed    []*VersionWriteError
	Untouched []string
	// Preflight is true when the failure happened before any file was written.
	Preflight bool
}

// Error implements the error interface.
func (e *PartialUpdateError) Error() string {
	failed := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		failed[i] = f.Package
	}

	if e.Preflight {
		return fmt.Sprintf("update to %s aborted before writing: %d package(s) cannot be updated (%s)",
			e.Version, len(e.Failed), strings.Join(failed, ", "))
	}
	return fmt.Sprintf("update to %s incomplete: %d updated, failed: %s, untouched: %d",
		e.Version, len(e.Updated), strings.Join(failed, ", "), len(e.Untouched))
}

// Unwrap returns the individual write failures.
func (e *PartialUpdateError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}
