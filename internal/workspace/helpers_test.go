package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// memberSpec describes a member crate written by writeWorkspace.
type memberSpec struct {
	dir     string
	name    string
	version string
	deps    []string
}

// writeWorkspace creates a Cargo workspace under a temp dir and returns its root.
// Each member's deps become path dependencies on sibling crates/<dep>.
func writeWorkspace(t *testing.T, members ...memberSpec) string {
	t.Helper()

	root := t.TempDir()
	var paths []string
	for _, m := range members {
		paths = append(paths, fmt.Sprintf("    %q,", m.dir))
		writeMember(t, root, m)
	}

	rootManifest := "[workspace]\nmembers = [\n" + strings.Join(paths, "\n") + "\n]\n"
	writeFile(t, filepath.Join(root, "Cargo.toml"), rootManifest)
	return root
}

func writeMember(t *testing.T, root string, m memberSpec) {
	t.Helper()

	var b strings.Builder
	fmt.Fprintf(&b, "[package]\nname = %q\nversion = %q\nedition = \"2021\"\n\n[dependencies]\nserde = \"1.0\"\n", m.name, m.version)
	for _, dep := range m.deps {
		fmt.Fprintf(&b, "%s = { path = \"../%s\" }\n", dep, dep)
	}
	writeFile(t, filepath.Join(root, m.dir, "Cargo.toml"), b.String())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// scenarioWorkspace is A -> B, C -> A,B, all at 0.1.0.
func scenarioWorkspace(t *testing.T) string {
	t.Helper()
	return writeWorkspace(t,
		memberSpec{dir: "crates/A", name: "A", version: "0.1.0", deps: []string{"B"}},
		memberSpec{dir: "crates/B", name: "B", version: "0.1.0"},
		memberSpec{dir: "crates/C", name: "C", version: "0.1.0", deps: []string{"A", "B"}},
	)
}
