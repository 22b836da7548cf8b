package semver

import (
	"fmt"
	"strings"
)

// BumpKind selects which component of a version is incremented.
type BumpKind int

const (
	// BumpMajor increments MAJOR and resets MINOR and PATCH.
	BumpMajor BumpKind = iota
	// BumpMinor increments MINOR and resets PATCH.
	BumpMinor
	// BumpPatch increments PATCH.
	BumpPatch
)

// String returns the lowercase name of the bump kind.
func (k BumpKind) String() string {
	switch k {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPatch:
		return "patch"
	default:
		return fmt.Sprintf("BumpKind(%d)", int(k))
	}
}

// BumpKinds returns the accepted bump kind names in display order.
func BumpKinds() []string {
	return []string{"major", "minor", "patch"}
}

// InvalidBumpKindError is returned for an unknown bump kind name.
type InvalidBumpKindError struct {
	Kind string
}

// Error implements the error interface.
func (e *InvalidBumpKindError) Error() string {
	return fmt.Sprintf("invalid bump kind %q (valid: %s)", e.Kind, strings.Join(BumpKinds(), ", "))
}

// ParseBumpKind converts a name such as "minor" into a BumpKind.
func ParseBumpKind(s string) (BumpKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "patch":
		return BumpPatch, nil
	default:
		return 0, &InvalidBumpKindError{Kind: s}
	}
}

// Bump returns a new version incremented by kind.
// The pre-release suffix is always dropped and lower-order components reset.
func (v Version) Bump(kind BumpKind) Version {
	switch kind {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// Bump parses current and returns its string form incremented by kind.
func Bump(kind BumpKind, current string) (string, error) {
	v, err := Parse(current)
	if err != nil {
		return "", err
	}
	return v.Bump(kind).String(), nil
}
