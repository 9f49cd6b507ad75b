// Package printer renders search.Sink events as human-readable, JSON, or
// summary output.
package printer

import (
	"path/filepath"
	"strings"
)

// Path wraps a file path the way a printer needs it: as raw bytes, with an
// optional separator override, and a lazily computed hyperlink form.
//
// Go strings are already required to be valid UTF-8 byte sequences by
// convention, so unlike the teacher's PrinterPath there is no lossy
// Windows-only conversion path here; Path is a thin wrapper that exists to
// amortize separator substitution and hyperlink URI construction across
// many printed lines for the same file.
type Path struct {
	raw       string
	sep       byte
	hasSep    bool
	hyperlink string
	hlDone    bool
}

// NewPath returns a Path for p with no separator override.
func NewPath(p string) *Path {
	return &Path{raw: p}
}

// WithSeparator returns a copy of p whose As Bytes/String output has every
// '/' (and, on Windows, '\') replaced by sep.
func (p *Path) WithSeparator(sep byte) *Path {
	return &Path{raw: replaceSeparator(p.raw, sep), sep: sep, hasSep: true}
}

func replaceSeparator(s string, sep byte) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '/' || (filepath.Separator == '\\' && c == '\\') {
			b.WriteByte(sep)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// String returns the path's textual form.
func (p *Path) String() string { return p.raw }

// Bytes returns the path's byte form.
func (p *Path) Bytes() []byte { return []byte(p.raw) }

// Hyperlink returns a "file://host/path" URI for this path, computed once
// and cached. Returns "" if the absolute path cannot be determined.
func (p *Path) Hyperlink() string {
	if p.hlDone {
		return p.hyperlink
	}
	p.hlDone = true
	abs, err := filepath.Abs(p.raw)
	if err != nil {
		return ""
	}
	p.hyperlink = "file://" + hostname() + filepath.ToSlash(abs)
	return p.hyperlink
}
