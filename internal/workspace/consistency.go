package workspace

import (
	"fmt"
	"sort"

	"github.com/ariel-frischer/lockstep/internal/semver"
)

// ConsistencyReport is the result of CheckConsistency.
type ConsistencyReport struct {
	// Consistent is true iff exactly one distinct version is declared.
	Consistent bool
	// Mismatches lists every package as "name: version" when inconsistent,
	// in discovery order. It is empty when consistent.
	Mismatches []string
	// Distinct lists the distinct versions, highest first.
	Distinct []string
}

// Version returns the shared version when the workspace is consistent.
func (r ConsistencyReport) Version() (string, bool) {
	if !r.Consistent {
		return "", false
	}
	return r.Distinct[0], true
}

// CheckConsistency reports whether every package declares the same version.
// An empty index has no versions and is reported as inconsistent with no
// mismatches.
func (idx *Index) CheckConsistency() ConsistencyReport {
	distinct := make(map[string]semver.Version)
	for _, p := range idx.packages {
		distinct[p.Version.String()] = p.Version
	}

	report := ConsistencyReport{
		Consistent: len(distinct) == 1,
		Distinct:   sortedDistinct(distinct),
	}
	if report.Consistent {
		report.Mismatches = []string{}
		return report
	}

	report.Mismatches = make([]string, 0, len(idx.packages))
	for _, p := range idx.packages {
		report.Mismatches = append(report.Mismatches, fmt.Sprintf("%s: %s", p.Name, p.Version))
	}
	return report
}

// HighestVersion returns the highest declared version and the first package
// declaring it. ok is false for an empty index.
func (idx *Index) HighestVersion() (v semver.Version, name string, ok bool) {
	for _, p := range idx.packages {
		if !ok || semver.Compare(p.Version, v) > 0 {
			v, name, ok = p.Version, p.Name, true
		}
	}
	return v, name, ok
}

func sortedDistinct(distinct map[string]semver.Version) []string {
	versions := make([]semver.Version, 0, len(distinct))
	for _, v := range distinct {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(versions[i], versions[j]) > 0
	})

	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.String()
	}
	return out
}
