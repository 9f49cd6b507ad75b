package printer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/coregx/rg/search"
)

// StandardConfig holds the tunables of the standard (human-readable)
// printer, mirroring the knobs documented in spec.md §4.8.
type StandardConfig struct {
	// Colors enables ANSI colour spans around matched text.
	Colors bool

	// Heading prints the file path once above each file's matches rather
	// than as a per-line prefix.
	Heading bool

	// Path includes the file path as a per-line field (ignored when
	// Heading is set).
	Path bool

	// LineNumber includes the 1-based line number field.
	LineNumber bool

	// Column includes the byte column of the first match on the line.
	Column bool

	// ByteOffset includes the absolute byte offset field.
	ByteOffset bool

	// FieldMatchSeparator separates fields on a matched line. Default ':'.
	FieldMatchSeparator byte

	// FieldContextSeparator separates fields on a context line. Default '-'.
	FieldContextSeparator byte

	// PathTerminator, if non-nil, overrides the byte written after a path
	// field instead of FieldMatchSeparator/FieldContextSeparator.
	PathTerminator *byte

	// Separator, if non-empty, is printed as its own line between groups
	// of emitted context/match lines (ContextBreak).
	Separator []byte

	// MaxColumns truncates/omits a line whose byte length exceeds it. Zero
	// disables the limit.
	MaxColumns int

	// MaxColumnsPreview prints a prefix plus "..." instead of the full
	// omission notice when MaxColumns is exceeded.
	MaxColumnsPreview bool

	// TrimLeadingWhitespace strips leading ASCII whitespace from each
	// emitted line (never past the line terminator).
	TrimLeadingWhitespace bool

	// Replacement, if non-nil, is interpolated in place of every match.
	Replacement []byte

	// Hyperlinks wraps the path field in an OSC-8 hyperlink escape.
	Hyperlinks bool

	// PathSeparator overrides the byte used to join path components, if
	// non-zero.
	PathSeparator byte

	// StatsIncluded prints a trailing summary line after each file's
	// output (like the teacher's --stats flag).
	StatsIncluded bool
}

// DefaultStandardConfig returns the documented default field separators.
func DefaultStandardConfig() StandardConfig {
	return StandardConfig{
		FieldMatchSeparator:   ':',
		FieldContextSeparator: '-',
	}
}

// Standard is a search.Sink that renders matches, context, and (on
// request) a final stats line in the traditional grep style.
type Standard struct {
	cfg        StandardConfig
	w          *CounterWriter
	path       *Path
	matchColor *color.Color
	lineColor  *color.Color

	headerPrinted bool
	matched       bool
	matchCount    uint64
	matchedLines  uint64
	afterBreak    bool
	stats         search.Stats

	replacer *Replacer
}

// NewStandard returns a Standard printer writing to w. path may be empty
// when the haystack has no associated file path (e.g. stdin).
func NewStandard(cfg StandardConfig, w io.Writer, path string) *Standard {
	s := &Standard{
		cfg:      cfg,
		w:        NewCounterWriter(w),
		replacer: NewReplacer(),
	}
	if path != "" {
		p := NewPath(path)
		if cfg.PathSeparator != 0 {
			p = p.WithSeparator(cfg.PathSeparator)
		}
		s.path = p
	}
	if cfg.Colors {
		s.matchColor = color.New(color.FgRed, color.Bold)
		s.lineColor = color.New(color.FgGreen)
	}
	return s
}

// Stats returns the accumulated statistics for this printer's search.
func (s *Standard) Stats() search.Stats { return s.stats }

// BytesPrinted returns the total number of bytes written by this printer.
func (s *Standard) BytesPrinted() uint64 { return s.w.TotalCount() }

func (s *Standard) Begin(*search.Searcher) (bool, error) { return true, nil }

func (s *Standard) Matched(sr *search.Searcher, m *search.SinkMatch) (bool, error) {
	s.matched = true
	s.matchCount += uint64(max1(len(m.Ranges)))
	s.matchedLines++
	if err := s.printHeaderOnce(); err != nil {
		return false, err
	}
	if err := s.maybeBreak(); err != nil {
		return false, err
	}
	return s.renderLine(sr, m.Bytes, m.AbsoluteByteOffset, m.LineNumber, sr.LineNumber(), m.Ranges, s.cfg.FieldMatchSeparator)
}

func (s *Standard) Context(sr *search.Searcher, c *search.SinkContext) (bool, error) {
	if err := s.printHeaderOnce(); err != nil {
		return false, err
	}
	if err := s.maybeBreak(); err != nil {
		return false, err
	}
	return s.renderLine(sr, c.Bytes, c.AbsoluteByteOffset, c.LineNumber, sr.LineNumber(), nil, s.cfg.FieldContextSeparator)
}

func (s *Standard) ContextBreak(*search.Searcher) (bool, error) {
	s.afterBreak = true
	return true, nil
}

func (s *Standard) BinaryData(_ *search.Searcher, offset int) (bool, error) {
	prefix := ""
	if s.cfg.Path && s.path != nil {
		prefix = s.path.String() + ": "
	}
	_, err := fmt.Fprintf(s.w, "%sbinary file matches (found %q byte around offset %d)\n", prefix, "\\0", offset)
	return false, err
}

func (s *Standard) Finish(_ *search.Searcher, f *search.SinkFinish) error {
	s.stats.BytesSearched += f.ByteCount
	if s.matched {
		s.stats.SearchesWithMatch++
	}
	s.stats.Searches++
	s.stats.Matches += s.matchCount
	s.stats.MatchedLines += s.matchedLines
	s.stats.BytesPrinted = s.w.TotalCount()
	if s.cfg.StatsIncluded {
		fmt.Fprintf(s.w, "%d matches\n", s.matchCount)
	}
	return nil
}

func max1(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func (s *Standard) printHeaderOnce() error {
	if !s.cfg.Heading || !s.cfg.Path || s.headerPrinted || s.path == nil {
		return nil
	}
	s.headerPrinted = true
	if _, err := fmt.Fprintf(s.w, "%s\n", s.pathDisplay()); err != nil {
		return err
	}
	return nil
}

func (s *Standard) pathDisplay() string {
	if s.cfg.Hyperlinks {
		if link := s.path.Hyperlink(); link != "" {
			return "\x1b]8;;" + link + "\x1b\\" + s.path.String() + "\x1b]8;;\x1b\\"
		}
	}
	return s.path.String()
}

func (s *Standard) maybeBreak() error {
	if !s.afterBreak {
		return nil
	}
	s.afterBreak = false
	if len(s.cfg.Separator) == 0 {
		return nil
	}
	_, err := s.w.Write(append(append([]byte{}, s.cfg.Separator...), '\n'))
	return err
}

// renderLine formats and writes one line, applying replacement, trimming,
// the max-columns cap, and colourisation before emitting the field-
// separated record.
func (s *Standard) renderLine(
	sr *search.Searcher,
	bytes []byte,
	absOffset uint64,
	lineNumber uint64,
	lineNumberEnabled bool,
	ranges []search.Range,
	sep byte,
) (bool, error) {
	body := bytes
	start, end := 0, len(bytes)
	matches := ranges

	if s.cfg.Replacement != nil && len(ranges) > 0 {
		term := byte('\n')
		rng := search.Range{Start: 0, End: len(bytes)}
		s.replacer.ReplaceAll(bytes, rng, term, s.cfg.Replacement, func(haystack []byte, at int, f func(int, int) bool) {
			for _, r := range ranges {
				if r.Start < at {
					continue
				}
				if !f(r.Start, r.End) {
					break
				}
			}
		})
		if dst, repMatches, ok := s.replacer.Replacement(); ok {
			body = dst
			start, end = 0, len(dst)
			matches = repMatches
		}
	}

	if s.cfg.TrimLeadingWhitespace {
		trimmed := trimASCIIPrefixRange(body, start, end, '\n')
		start += trimmed
		matches = shiftRanges(matches, -trimmed)
	}

	if s.cfg.MaxColumns > 0 && end-start > s.cfg.MaxColumns {
		return s.renderOverLong(sr, body, start, end, absOffset, lineNumber, lineNumberEnabled, len(ranges), sep)
	}

	if err := s.writeFields(sr, absOffset, lineNumber, lineNumberEnabled, start, sep); err != nil {
		return false, err
	}
	if err := s.writeColoured(body[start:end], matches, start); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Standard) renderOverLong(
	sr *search.Searcher,
	body []byte,
	start, end int,
	absOffset uint64,
	lineNumber uint64,
	lineNumberEnabled bool,
	numMatches int,
	sep byte,
) (bool, error) {
	if err := s.writeFields(sr, absOffset, lineNumber, lineNumberEnabled, start, sep); err != nil {
		return false, err
	}
	if s.cfg.MaxColumnsPreview {
		limit := start + s.cfg.MaxColumns
		if limit > end {
			limit = end
		}
		if _, err := s.w.Write(body[start:limit]); err != nil {
			return false, err
		}
		_, err := s.w.Write([]byte(" [... omitted end of long line]\n"))
		return true, err
	}
	_, err := fmt.Fprintf(s.w, "[Omitted long line with %d matches]\n", numMatches)
	return true, err
}

func (s *Standard) writeFields(sr *search.Searcher, absOffset uint64, lineNumber uint64, lineNumberEnabled bool, trimmed int, sep byte) error {
	if s.cfg.Path && !s.cfg.Heading && s.path != nil {
		if _, err := s.w.Write([]byte(s.pathDisplay())); err != nil {
			return err
		}
		if err := s.w.WriteByte(fieldTerm(s.cfg, sep)); err != nil {
			return err
		}
	}
	if lineNumberEnabled {
		if _, err := s.w.Write(strconv.AppendUint(nil, lineNumber, 10)); err != nil {
			return err
		}
		if err := s.w.WriteByte(sep); err != nil {
			return err
		}
	}
	if s.cfg.Column {
		if _, err := s.w.Write(strconv.AppendUint(nil, uint64(trimmed+1), 10)); err != nil {
			return err
		}
		if err := s.w.WriteByte(sep); err != nil {
			return err
		}
	}
	if s.cfg.ByteOffset {
		if _, err := s.w.Write(strconv.AppendUint(nil, absOffset, 10)); err != nil {
			return err
		}
		if err := s.w.WriteByte(sep); err != nil {
			return err
		}
	}
	return nil
}

func fieldTerm(cfg StandardConfig, sep byte) byte {
	if cfg.PathTerminator != nil {
		return *cfg.PathTerminator
	}
	return sep
}

// WriteByte satisfies the small subset of bufio.Writer used above, via
// CounterWriter's plain io.Writer embedding.
func (c *CounterWriter) WriteByte(b byte) error {
	_, err := c.Write([]byte{b})
	return err
}

func (s *Standard) writeColoured(line []byte, matches []search.Range, base int) error {
	if !s.cfg.Colors || len(matches) == 0 {
		_, err := s.w.Write(line)
		return err
	}
	pos := 0
	for _, m := range matches {
		lo, hi := m.Start-base, m.End-base
		if lo < 0 {
			lo = 0
		}
		if hi > len(line) {
			hi = len(line)
		}
		if lo > pos {
			if _, err := s.w.Write(line[pos:lo]); err != nil {
				return err
			}
		}
		if hi > lo {
			if _, err := s.matchColor.Fprint(s.w, string(line[lo:hi])); err != nil {
				return err
			}
		}
		if hi > pos {
			pos = hi
		}
	}
	if pos < len(line) {
		_, err := s.w.Write(line[pos:])
		return err
	}
	return nil
}

func shiftRanges(rs []search.Range, delta int) []search.Range {
	if delta == 0 {
		return rs
	}
	out := make([]search.Range, len(rs))
	for i, r := range rs {
		out[i] = search.Range{Start: r.Start + delta, End: r.End + delta}
	}
	return out
}
