package cli

import (
	"errors"
	"io"

	"github.com/ariel-frischer/lockstep/internal/cli/shared"
	"github.com/ariel-frischer/lockstep/internal/depgraph"
	clierrors "github.com/ariel-frischer/lockstep/internal/errors"
	"github.com/ariel-frischer/lockstep/internal/semver"
	"github.com/ariel-frischer/lockstep/internal/workspace"
)

// classifyError maps domain errors to a CLIError and exit code.
// Errors that already carry an exit code keep it.
func classifyError(err error) *shared.ExitError {
	var exitErr *shared.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil && !clierrors.IsCLIError(exitErr.Err) {
			return &shared.ExitError{Code: exitErr.Code, Err: toCLIError(exitErr.Err)}
		}
		return exitErr
	}

	code := shared.ExitFailure
	var (
		invalidVersion *semver.InvalidVersionError
		invalidBump    *semver.InvalidBumpKindError
		notFound       *workspace.PackageNotFoundError
		noWorkspace    *workspace.WorkspaceNotFoundError
		partial        *workspace.PartialUpdateError
		cycle          *depgraph.CycleError
	)
	switch {
	case errors.As(err, &invalidVersion), errors.As(err, &invalidBump), errors.As(err, &notFound):
		code = shared.ExitInvalidArguments
	case errors.As(err, &noWorkspace):
		code = shared.ExitWorkspaceNotFound
	case errors.As(err, &partial):
		code = shared.ExitPartialUpdate
	case errors.As(err, &cycle):
		code = shared.ExitCyclicDependency
	}
	return &shared.ExitError{Code: code, Err: toCLIError(err)}
}

// toCLIError converts err into a CLIError with remediation guidance.
func toCLIError(err error) *clierrors.CLIError {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var (
		invalidVersion *semver.InvalidVersionError
		invalidBump    *semver.InvalidBumpKindError
		notFound       *workspace.PackageNotFoundError
		noWorkspace    *workspace.WorkspaceNotFoundError
		partial        *workspace.PartialUpdateError
		cycle          *depgraph.CycleError
	)
	switch {
	case errors.As(err, &invalidVersion):
		return clierrors.InvalidVersion(invalidVersion.Input, invalidVersion.Reason)
	case errors.As(err, &invalidBump):
		return clierrors.InvalidBumpKind(invalidBump.Kind)
	case errors.As(err, &notFound):
		return clierrors.UnknownPackage(notFound.Name, notFound.Available)
	case errors.As(err, &noWorkspace):
		return clierrors.WorkspaceNotFound(noWorkspace.Root, noWorkspace.Err)
	case errors.As(err, &partial):
		failed := make([]string, len(partial.Failed))
		for i, f := range partial.Failed {
			failed[i] = f.Package
		}
		cliErr := clierrors.PartialUpdate(partial.Version, partial.Updated, failed, partial.Untouched, partial.Preflight)
		for _, f := range partial.Failed {
			cliErr.Remediation = append(cliErr.Remediation, f.Error())
		}
		return cliErr
	case errors.As(err, &cycle):
		return clierrors.CyclicDependency(cycle.Path)
	default:
		return clierrors.Wrap(err, clierrors.Runtime)
	}
}

// printError writes the formatted error for exitErr to w.
func printError(w io.Writer, exitErr *shared.ExitError) {
	if exitErr.Err == nil {
		return
	}
	clierrors.FprintError(w, toCLIError(exitErr.Err))
}
