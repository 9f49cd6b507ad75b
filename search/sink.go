package search

import "time"

// Sink receives the events produced by a search. Every method returns
// (keepGoing, err); returning keepGoing=false or a non-nil error stops the
// search early, but Finish is still always called.
type Sink interface {
	// Matched is called once for every match, in source order.
	Matched(s *Searcher, m *SinkMatch) (bool, error)

	// Context is called for every before/after/passthru context line.
	Context(s *Searcher, c *SinkContext) (bool, error)

	// ContextBreak is called when a gap separates two groups of emitted
	// context/match lines and the sink has any context configured, so it
	// can print a separator between them.
	ContextBreak(s *Searcher) (bool, error)

	// BinaryData is called once, the first time binary data is detected
	// in the haystack, carrying the absolute offset it was found at.
	BinaryData(s *Searcher, offset int) (bool, error)

	// Begin is called once before any other callback.
	Begin(s *Searcher) (bool, error)

	// Finish is called exactly once, after the search completes (whether
	// it ran to completion, was stopped early by a callback, or errored).
	Finish(s *Searcher, f *SinkFinish) error
}

// SinkMatch describes one matched line (or, in multi-line mode, a run of
// lines) to a Sink.
type SinkMatch struct {
	// Bytes is the full contents of the matched line(s), including their
	// terminators, relative to the start of the searched haystack.
	Bytes []byte

	// AbsoluteByteOffset is the offset of Bytes within the whole source.
	AbsoluteByteOffset uint64

	// LineNumber is 1-based and present only when line numbering is
	// enabled.
	LineNumber uint64

	// Ranges holds the byte offsets of each submatch within Bytes, used
	// by printers that colour or replace the matched text. Ranges is
	// empty if invert_match is enabled, since there is no meaningful
	// submatch to report.
	Ranges []Range
}

// Range is a half-open byte range within a SinkMatch's or SinkContext's
// Bytes field.
type Range struct {
	Start int
	End   int
}

// SinkContextKind distinguishes the three kinds of context line a Sink may
// be asked to render.
type SinkContextKind int

const (
	// SinkContextBefore is a line preceding a match.
	SinkContextBefore SinkContextKind = iota
	// SinkContextAfter is a line following a match.
	SinkContextAfter
	// SinkContextOther is a passthru line: a non-matching line emitted
	// because passthru mode is enabled, independent of context windows.
	SinkContextOther
)

// SinkContext describes one context line to a Sink.
type SinkContext struct {
	Bytes              []byte
	AbsoluteByteOffset uint64
	LineNumber         uint64
	Kind               SinkContextKind
}

// SinkFinish carries summary information delivered to Sink.Finish once a
// search completes.
type SinkFinish struct {
	// ByteCount is the total number of bytes the searcher consumed from
	// the source.
	ByteCount uint64

	// BinaryByteOffset is set when binary data was detected anywhere in
	// the source, regardless of detection mode.
	BinaryByteOffset uint64
	HasBinaryOffset  bool
}

// Stats accumulates aggregate counters across one or more searches, for
// sinks (such as the JSON and summary printers) that report totals.
type Stats struct {
	Elapsed          time.Duration
	Searches         uint64
	SearchesWithMatch uint64
	BytesSearched    uint64
	BytesPrinted     uint64
	MatchedLines     uint64
	Matches          uint64
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Elapsed += other.Elapsed
	s.Searches += other.Searches
	s.SearchesWithMatch += other.SearchesWithMatch
	s.BytesSearched += other.BytesSearched
	s.BytesPrinted += other.BytesPrinted
	s.MatchedLines += other.MatchedLines
	s.Matches += other.Matches
}
