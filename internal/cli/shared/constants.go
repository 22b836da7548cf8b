// Package shared provides constants and types used across CLI subpackages.
package shared

import (
	"errors"
	"fmt"
)

// Exit codes for the lockstep CLI.
// These codes support programmatic composition and CI/CD integration.
const (
	// ExitSuccess indicates successful command execution, including a
	// non-strict check that found inconsistent versions.
	ExitSuccess = 0

	// ExitFailure indicates a general failure.
	ExitFailure = 1

	// ExitPartialUpdate indicates an update that wrote some manifests but not all,
	// or aborted during preflight.
	ExitPartialUpdate = 2

	// ExitInvalidArguments indicates invalid arguments: a malformed version,
	// an unknown bump kind or an unknown package.
	ExitInvalidArguments = 3

	// ExitWorkspaceNotFound indicates workspace discovery failed fatally.
	ExitWorkspaceNotFound = 4

	// ExitCyclicDependency indicates the dependency graph contains a cycle.
	ExitCyclicDependency = 5
)

// Command group IDs for help output.
const (
	GroupRelease        = "release"
	GroupInspection     = "inspection"
	GroupConfiguration  = "configuration"
	GroupGettingStarted = "getting-started"
)

// ExitError carries a process exit code together with the error that caused it.
type ExitError struct {
	Code int
	Err  error
}

// NewExitError returns an ExitError with no underlying cause.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

// WrapExitError returns an ExitError for err.
func WrapExitError(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Unwrap returns the underlying cause.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit code from an error.
// Nil means success; errors without an ExitError map to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
