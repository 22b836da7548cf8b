// Package semver implements the MAJOR.MINOR.PATCH[-PRERELEASE] version value
// used by every lockstep workspace member, together with validation, ordering
// and increment arithmetic.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionPattern is the accepted textual form. Build metadata is not allowed.
var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-([A-Za-z0-9]+(?:\.[A-Za-z0-9]+)*))?$`)

// Version is an immutable semantic version value.
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string
}

// InvalidVersionError is returned when a string is not a valid version.
type InvalidVersionError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid version format %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid version format %q", e.Input)
}

// Parse parses s into a Version.
// Returns InvalidVersionError if s does not match MAJOR.MINOR.PATCH[-PRERELEASE].
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, &InvalidVersionError{Input: s, Reason: "expected MAJOR.MINOR.PATCH[-PRERELEASE]"}
	}

	var parts [3]uint64
	for i := range parts {
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil {
			return Version{}, &InvalidVersionError{Input: s, Reason: "numeric component out of range"}
		}
		parts[i] = n
	}

	return Version{
		Major:      parts[0],
		Minor:      parts[1],
		Patch:      parts[2],
		Prerelease: m[4],
	}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether s is a valid version string.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the canonical textual form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// IsPrerelease returns true if the version carries a pre-release suffix.
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// Compare returns -1, 0 or 1 depending on whether a sorts before, equal to,
// or after b. Pre-release versions sort before their release.
func Compare(a, b Version) int {
	if c := compareUint(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareUint(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareUint(a.Patch, b.Patch); c != 0 {
		return c
	}
	return comparePrerelease(a.Prerelease, b.Prerelease)
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePrerelease orders dot-separated identifiers: numeric identifiers
// compare numerically and sort before alphanumeric ones, and a shorter list
// sorts first when all shared identifiers are equal.
func comparePrerelease(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareIdentifier(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return compareUint(uint64(len(as)), uint64(len(bs)))
}

func compareIdentifier(a, b string) int {
	an, aErr := strconv.ParseUint(a, 10, 64)
	bn, bErr := strconv.ParseUint(b, 10, 64)

	switch {
	case aErr == nil && bErr == nil:
		return compareUint(an, bn)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
