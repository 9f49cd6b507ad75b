package printer

import (
	"fmt"
	"io"
	"time"

	"github.com/coregx/rg/search"
)

// CounterWriter wraps an io.Writer and tracks how many bytes have passed
// through it, so a printer can report bytes_printed without needing the
// underlying writer to expose that itself.
type CounterWriter struct {
	w          io.Writer
	count      uint64
	totalCount uint64
}

// NewCounterWriter wraps w.
func NewCounterWriter(w io.Writer) *CounterWriter {
	return &CounterWriter{w: w}
}

// Write implements io.Writer, counting the bytes accepted by the
// underlying writer before any error is returned.
func (c *CounterWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.count += uint64(n)
	return n, err
}

// Count returns the number of bytes written since construction or the last
// ResetCount.
func (c *CounterWriter) Count() uint64 { return c.count }

// TotalCount returns the number of bytes written since construction,
// regardless of any ResetCount calls.
func (c *CounterWriter) TotalCount() uint64 { return c.totalCount + c.count }

// ResetCount zeroes Count, folding its value into TotalCount.
func (c *CounterWriter) ResetCount() {
	c.totalCount += c.count
	c.count = 0
}

// NiceDuration formats a time.Duration the way the teacher's printer does:
// fractional seconds to six decimal places.
type NiceDuration time.Duration

func (d NiceDuration) String() string {
	return fmt.Sprintf("%0.6fs", time.Duration(d).Seconds())
}

// Secs returns the whole-second component, for JSON's {secs, nanos, human}.
func (d NiceDuration) Secs() int64 { return int64(time.Duration(d) / time.Second) }

// Nanos returns the fractional-second component in nanoseconds.
func (d NiceDuration) Nanos() int64 { return int64(time.Duration(d) % time.Second) }

// isSpaceNotTerm reports whether b is ASCII whitespace other than the given
// line terminator byte, mirroring trim_ascii_prefix's refusal to eat past
// the terminator.
func isSpaceNotTerm(b, term byte) bool {
	switch b {
	case '\t', '\n', '\v', '\f', '\r', ' ':
		return b != term
	}
	return false
}

// trimASCIIPrefixRange returns the number of leading ASCII-whitespace bytes
// (excluding the line terminator) in bytes[start:end].
func trimASCIIPrefixRange(bytes []byte, start, end int, term byte) int {
	n := 0
	for i := start; i < end; i++ {
		if !isSpaceNotTerm(bytes[i], term) {
			break
		}
		n++
	}
	return n
}

// trimLineTerminator strips a trailing line-terminator sequence (including
// a preceding '\r' for CRLF) from bytes[:end], returning the new end and
// the stripped terminator bytes.
func trimLineTerminator(bytes []byte, end int, term byte) (newEnd int, stripped []byte) {
	if end == 0 || bytes[end-1] != term {
		return end, nil
	}
	cut := end - 1
	if term == '\n' && cut > 0 && bytes[cut-1] == '\r' {
		cut--
	}
	return cut, bytes[cut:end]
}

// Replacer performs regex-replacement over a matched or context line,
// reusing its internal buffer across calls the way the teacher's
// grep-printer Replacer amortizes allocation.
type Replacer struct {
	dst     []byte
	matches []search.Range
}

// NewReplacer returns an empty Replacer; space is allocated lazily on the
// first ReplaceAll call.
func NewReplacer() *Replacer { return &Replacer{} }

// Clear discards any prior replacement result.
func (r *Replacer) Clear() {
	r.dst = r.dst[:0]
	r.matches = r.matches[:0]
}

// Replacement returns the most recent replacement's output bytes and the
// ranges within them occupied by substituted text, or ok=false if no
// replacement has been performed (or it was cleared).
func (r *Replacer) Replacement() (dst []byte, matches []search.Range, ok bool) {
	if len(r.matches) == 0 {
		return nil, nil, false
	}
	return r.dst, r.matches, true
}

// ReplaceAll finds every match in bytes[range.Start:range.End] using
// findIterAt (a callback-driven iterator of (start,end) match offsets, cap-
// aware the way the regex engine's FindAllIndicesStreaming is) and
// interpolates replacement in place of each, writing the result plus
// whatever line terminator followed rng.End back into the Replacer's
// buffer.
func (r *Replacer) ReplaceAll(
	bytes []byte,
	rng search.Range,
	term byte,
	replacement []byte,
	findIterAt func(haystack []byte, at int, f func(start, end int) bool),
) {
	r.Clear()
	trimmedEnd, termBytes := trimLineTerminator(bytes, rng.End, term)
	haystack := bytes[:trimmedEnd]

	last := rng.Start
	findIterAt(haystack, rng.Start, func(start, end int) bool {
		if start >= trimmedEnd {
			return false
		}
		r.dst = append(r.dst, haystack[last:start]...)
		last = end
		mstart := len(r.dst)
		r.dst = interpolate(r.dst, replacement, haystack[start:end])
		mend := len(r.dst)
		r.matches = append(r.matches, search.Range{Start: mstart, End: mend})
		return true
	})
	endCopy := trimmedEnd
	if last > trimmedEnd {
		endCopy = len(haystack)
	}
	if last < endCopy {
		r.dst = append(r.dst, haystack[last:endCopy]...)
	}
	r.dst = append(r.dst, termBytes...)
}

// interpolate appends replacement to dst, substituting "$0" with the
// original matched text (no named/numbered capture groups are threaded
// through here since the searcher's Matcher protocol does not expose
// per-replacement capture access; see Replacer docs).
func interpolate(dst, replacement, matched []byte) []byte {
	for i := 0; i < len(replacement); i++ {
		if replacement[i] == '$' && i+1 < len(replacement) && replacement[i+1] == '0' {
			dst = append(dst, matched...)
			i++
			continue
		}
		dst = append(dst, replacement[i])
	}
	return dst
}
