// Package shared tests shared constants and types used across CLI subpackages.
// Related: internal/cli/shared/constants.go
// Tags: cli, shared, constants, exit-codes, errors

package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		constant int
		want     int
	}{
		"ExitSuccess":           {constant: ExitSuccess, want: 0},
		"ExitFailure":           {constant: ExitFailure, want: 1},
		"ExitPartialUpdate":     {constant: ExitPartialUpdate, want: 2},
		"ExitInvalidArguments":  {constant: ExitInvalidArguments, want: 3},
		"ExitWorkspaceNotFound": {constant: ExitWorkspaceNotFound, want: 4},
		"ExitCyclicDependency":  {constant: ExitCyclicDependency, want: 5},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.constant)
		})
	}
}

func TestExitError_Error(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err         error
		wantMessage string
	}{
		"bare code 0": {err: NewExitError(0), wantMessage: "exit code 0"},
		"bare code 5": {err: NewExitError(5), wantMessage: "exit code 5"},
		"with cause":  {err: WrapExitError(3, errors.New("invalid version")), wantMessage: "invalid version"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.wantMessage, tc.err.Error())
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	tests := map[string]struct {
		err  error
		want int
	}{
		"nil error":           {err: nil, want: ExitSuccess},
		"exit error code 2":   {err: NewExitError(2), want: 2},
		"exit error code 4":   {err: WrapExitError(4, cause), want: 4},
		"wrapped exit error":  {err: fmt.Errorf("running: %w", NewExitError(ExitCyclicDependency)), want: 5},
		"generic error":       {err: cause, want: ExitFailure},
		"wrapped plain error": {err: fmt.Errorf("ctx: %w", cause), want: ExitFailure},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	assert.ErrorIs(t, WrapExitError(1, cause), cause)
}

func TestExitCodeUniqueness(t *testing.T) {
	t.Parallel()

	codes := []int{ExitSuccess, ExitFailure, ExitPartialUpdate, ExitInvalidArguments, ExitWorkspaceNotFound, ExitCyclicDependency}
	seen := make(map[int]bool)
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate exit code %d", c)
		seen[c] = true
	}
}
