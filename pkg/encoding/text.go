// Package encoding normalizes text that enters spline files from other
// tools.
package encoding

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NewReader decodes r to UTF-8. A UTF-16 or UTF-8 byte order mark selects
// the encoding and is dropped; input without one is taken as UTF-8.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// NormalizeName returns a spline name in canonical form: NFC, no
// surrounding space and nothing after an embedded NUL.
func NormalizeName(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return norm.NFC.String(strings.TrimSpace(s))
}
