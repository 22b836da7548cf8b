package depgraph

import (
	"fmt"
	"strings"
)

// CycleError represents a cycle detected in package dependencies.
type CycleError struct {
	// Path lists the package names forming the cycle. The first name is
	// repeated at the end.
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return "cyclic dependency detected"
	}
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Path, " -> "))
}
