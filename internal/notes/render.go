package notes

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// conventionalPattern matches "type(scope)!: description".
var conventionalPattern = regexp.MustCompile(`^([A-Za-z]+)(?:\(([^)]*)\))?(!)?:\s*(.+)$`)

// Section titles in render order.
const (
	SectionBreaking = "Breaking Changes"
	SectionFeatures = "Features"
	SectionFixes    = "Fixes"
	SectionOther    = "Other"
)

var sectionOrder = []string{SectionBreaking, SectionFeatures, SectionFixes, SectionOther}

// Render writes n as markdown.
func Render(n Notes, w io.Writer) error {
	_, err := io.WriteString(w, RenderString(n))
	return err
}

// RenderString is a convenience function that renders to a string.
func RenderString(n Notes) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Release %s\n\n", n.Version)

	if n.Fallback {
		fmt.Fprintf(&b, "## Changes\n\n- Version bumped to %s\n", n.Version)
		return b.String()
	}

	fmt.Fprintf(&b, "## Changes since %s\n\n", n.Since)
	if n.Grouped {
		renderGrouped(&b, n.Commits)
	} else {
		for _, c := range n.Commits {
			fmt.Fprintf(&b, "- %s\n", c.Oneline())
		}
	}

	if n.Omitted > 0 {
		if n.Grouped {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- ...and %d more commits\n", n.Omitted)
	}
	return b.String()
}

// renderGrouped writes non-empty sections in fixed order.
func renderGrouped(b *strings.Builder, commits []Commit) {
	sections := Group(commits)
	first := true
	for _, title := range sectionOrder {
		entries := sections[title]
		if len(entries) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		fmt.Fprintf(b, "### %s\n\n", title)
		for _, e := range entries {
			fmt.Fprintf(b, "- %s\n", e)
		}
	}
}

// Group classifies commits by Conventional Commit type. feat goes to
// Features, fix to Fixes, a "!" marker or BREAKING CHANGE subject to
// Breaking Changes, and everything else to Other. Entries keep commit order.
func Group(commits []Commit) map[string][]string {
	sections := make(map[string][]string)
	for _, c := range commits {
		title, entry := classify(c)
		sections[title] = append(sections[title], entry)
	}
	return sections
}

func classify(c Commit) (string, string) {
	m := conventionalPattern.FindStringSubmatch(c.Subject)
	if m == nil {
		if strings.HasPrefix(c.Subject, "BREAKING CHANGE") {
			return SectionBreaking, c.Oneline()
		}
		return SectionOther, c.Oneline()
	}

	kind, scope, bang, desc := strings.ToLower(m[1]), m[2], m[3], m[4]
	if scope != "" {
		desc = scope + ": " + desc
	}
	entry := c.ShortHash() + " " + desc

	switch {
	case bang != "":
		return SectionBreaking, entry
	case kind == "feat":
		return SectionFeatures, entry
	case kind == "fix":
		return SectionFixes, entry
	default:
		return SectionOther, entry
	}
}
