package manifest

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2/unstable"
)

// ErrVersionFieldNotFound is returned when the [package] table has no literal
// version string to rewrite.
var ErrVersionFieldNotFound = errors.New("no literal version field in [package] table")

// RewriteVerificationError is returned when the rewritten manifest does not
// parse back to the requested version.
type RewriteVerificationError struct {
	Want string
	Got  string
	Err  error
}

// Error implements the error interface.
func (e *RewriteVerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rewritten manifest is invalid: %v", e.Err)
	}
	return fmt.Sprintf("rewritten manifest declares version %q, want %q", e.Got, e.Want)
}

// Unwrap returns the underlying parse error, if any.
func (e *RewriteVerificationError) Unwrap() error {
	return e.Err
}

// SetVersion returns data with the [package] version replaced by version.
// Only the string literal is rewritten; its quote style and every other byte
// of the document are preserved. The result is parsed again and must declare
// exactly the requested version.
func SetVersion(data []byte, version string) ([]byte, error) {
	span, err := findPackageVersion(data)
	if err != nil {
		return nil, err
	}

	literal := data[span.Offset : span.Offset+span.Length]
	quote := literal[:1]

	out := make([]byte, 0, len(data)+len(version))
	out = append(out, data[:span.Offset]...)
	out = append(out, quote...)
	out = append(out, version...)
	out = append(out, quote...)
	out = append(out, data[span.Offset+span.Length:]...)

	if err := verifyVersion(out, version); err != nil {
		return nil, err
	}
	return out, nil
}

// findPackageVersion returns the byte range of the package.version string
// literal, quotes included. Scanning stops at the first match, so syntax
// errors further down are left for verification to report.
func findPackageVersion(data []byte) (unstable.Range, error) {
	var p unstable.Parser
	p.Reset(data)

	var table []string
	inArray := false
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table:
			table = keyPath(expr.Key())
			inArray = false
		case unstable.ArrayTable:
			inArray = true
		case unstable.KeyValue:
			value := expr.Value()
			if inArray || value.Kind != unstable.String {
				continue
			}
			key := append(append([]string(nil), table...), keyPath(expr.Key())...)
			if len(key) == 2 && key[0] == "package" && key[1] == "version" {
				return value.Raw, nil
			}
		}
	}
	if err := p.Error(); err != nil {
		return unstable.Range{}, fmt.Errorf("scanning manifest: %w", err)
	}
	return unstable.Range{}, ErrVersionFieldNotFound
}

func keyPath(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func verifyVersion(data []byte, want string) error {
	m, err := Parse(data)
	if err != nil {
		return &RewriteVerificationError{Want: want, Err: err}
	}
	if m.Version != want {
		return &RewriteVerificationError{Want: want, Got: m.Version}
	}
	return nil
}
