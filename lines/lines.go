// Package lines provides byte-slice line-scanning primitives shared by the
// searcher core: stepping through lines, locating the line containing a
// byte range, stripping terminators, and counting preceding lines.
package lines

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns End - Start.
func (r Range) Len() int { return r.End - r.Start }

// Iter yields successive lines (terminator included) from bytes.
type Iter struct {
	bytes   []byte
	stepper Step
}

// NewIter returns an iterator over the lines in bytes, delimited by term.
func NewIter(term byte, bytes []byte) *Iter {
	return &Iter{bytes: bytes, stepper: NewStep(term, 0, len(bytes))}
}

// Next returns the next line, or nil if the iterator is exhausted. Every
// returned line is non-empty and includes its terminator unless it is the
// final, unterminated line of the input.
func (it *Iter) Next() []byte {
	r, ok := it.stepper.Next(it.bytes)
	if !ok {
		return nil
	}
	return it.bytes[r.Start:r.End]
}

// Step is an explicit line stepper that does not own the underlying bytes;
// callers must pass the same byte slice to every call to Next.
type Step struct {
	term byte
	pos  int
	end  int
}

// NewStep returns a Step over bytes[start:end] delimited by term.
func NewStep(term byte, start, end int) Step {
	return Step{term: term, pos: start, end: end}
}

// Next returns the start/end of the next line in bytes, including its
// terminator. Callers must pass the identical byte slice on every call.
func (s *Step) Next(bytes []byte) (Range, bool) {
	bytes = bytes[:s.end]
	rest := bytes[s.pos:]
	idx := indexByte(rest, s.term)
	if idx < 0 {
		if s.pos < len(bytes) {
			r := Range{s.pos, len(bytes)}
			s.pos = r.End
			return r, true
		}
		return Range{}, false
	}
	r := Range{s.pos, s.pos + idx + 1}
	s.pos = r.End
	return r, true
}

// Count returns the number of occurrences of term in bytes.
func Count(bytes []byte, term byte) uint64 {
	var n uint64
	for _, b := range bytes {
		if b == term {
			n++
		}
	}
	return n
}

// WithoutTerminator returns bytes with its trailing terminator (one or two
// bytes, e.g. CRLF) removed, if present.
func WithoutTerminator(bytes []byte, term []byte) []byte {
	start := len(bytes) - len(term)
	if start < 0 {
		return bytes
	}
	if string(bytes[start:]) == string(term) {
		return bytes[:start]
	}
	return bytes
}

// Locate returns the start/end offsets of the line(s) containing rng,
// expanding rng's start backward to the preceding terminator (or 0) and its
// end forward to the next terminator (or end of bytes).
func Locate(bytes []byte, term byte, rng Range) Range {
	lineStart := 0
	if i := lastIndexByte(bytes[:rng.Start], term); i >= 0 {
		lineStart = i + 1
	}
	var lineEnd int
	if rng.End > lineStart && bytes[rng.End-1] == term {
		lineEnd = rng.End
	} else if i := indexByte(bytes[rng.End:], term); i >= 0 {
		lineEnd = rng.End + i + 1
	} else {
		lineEnd = len(bytes)
	}
	return Range{lineStart, lineEnd}
}

// Preceding returns the minimal start offset of the line that is count
// lines before the last line in bytes, delimited by term.
func Preceding(bytes []byte, term byte, count int) int {
	return precedingByPos(bytes, len(bytes), term, count)
}

// PrecedingByPos returns the minimal start offset of the line that is count
// lines before the line containing pos.
func PrecedingByPos(bytes []byte, pos int, term byte, count int) int {
	return precedingByPos(bytes, pos, term, count)
}

func precedingByPos(bytes []byte, pos int, term byte, count int) int {
	if pos == 0 {
		return 0
	}
	if bytes[pos-1] == term {
		pos--
	}
	for {
		i := lastIndexByte(bytes[:pos], term)
		if i < 0 {
			return 0
		}
		if count == 0 {
			return i + 1
		}
		if i == 0 {
			return 0
		}
		count--
		pos = i
	}
}

func indexByte(buf []byte, c byte) int {
	for i, x := range buf {
		if x == c {
			return i
		}
	}
	return -1
}

func lastIndexByte(buf []byte, c byte) int {
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] == c {
			return i
		}
	}
	return -1
}
