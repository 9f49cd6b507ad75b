package search

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/coregx/rg/linebuffer"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// BinaryDetection controls how the searcher reacts to binary data found in
// a haystack. The zero value is BinaryDetectionNone.
type BinaryDetection struct {
	det linebuffer.Detection
	set bool
}

// BinaryDetectionNone disables binary-data detection entirely.
func BinaryDetectionNone() BinaryDetection {
	return BinaryDetection{det: linebuffer.NoDetection()}
}

// BinaryDetectionQuit stops searching a haystack as soon as b is observed.
func BinaryDetectionQuit(b byte) BinaryDetection {
	return BinaryDetection{det: linebuffer.Quit(b), set: true}
}

// BinaryDetectionConvert rewrites every occurrence of b to the configured
// line terminator as it is read, letting the search continue.
func BinaryDetectionConvert(b byte) BinaryDetection {
	return BinaryDetection{det: linebuffer.Convert(b), set: true}
}

// MmapChoice controls whether the searcher is permitted to memory-map a
// file source instead of reading it incrementally.
type MmapChoice int

const (
	// MmapNever never memory-maps; sources are always read incrementally
	// or slurped into a plain byte slice.
	MmapNever MmapChoice = iota
	// MmapAuto memory-maps when the searcher judges it advantageous.
	MmapAuto
	// MmapAlwaysTry always attempts to memory-map a file source, falling
	// back to a regular read on failure.
	MmapAlwaysTry
)

// Encoding names a text encoding a haystack should be transcoded from
// before it is searched. The zero value, an empty string, disables
// transcoding: bytes pass through unmodified.
type Encoding string

// Config holds the complete, immutable configuration of a Searcher, built
// once via SearcherBuilder and then shared read-only by every search it
// runs.
type Config struct {
	// LineTerminator delimits lines in the source. Default: '\n'.
	LineTerminator byte

	// InvertMatch flips match polarity: lines the matcher does not match
	// are reported as matches. Default: false.
	InvertMatch bool

	// LineNumber enables lazy line-number tracking and reporting.
	// Default: false.
	LineNumber bool

	// MultiLine allows matches to span line terminators, forcing the
	// full-slice search path. Default: false.
	MultiLine bool

	// Passthru emits every non-matching line as an Other context event,
	// overriding ordinary before/after context. Default: false.
	Passthru bool

	// BeforeContext is the number of lines preceding a match to emit as
	// Before context events. Default: 0.
	BeforeContext int

	// AfterContext is the number of lines following a match to emit as
	// After context events. Default: 0.
	AfterContext int

	// StopOnNonmatch stops the search on the first non-matching line once
	// at least one match has been reported. Default: false.
	StopOnNonmatch bool

	// MaxMatches caps the number of matches the core will accept, draining
	// any pending after-context once reached. A nil value means no cap.
	// Default: nil.
	MaxMatches *uint64

	// BinaryDetection controls reaction to binary data in the haystack.
	// Default: BinaryDetectionNone().
	BinaryDetection BinaryDetection

	// HeapLimit caps how far the incremental line buffer may grow beyond
	// its base capacity, in bytes; a nil value allows unbounded growth.
	// Default: nil.
	HeapLimit *int

	// MmapChoice controls whether a file source may be memory-mapped.
	// Default: MmapNever (no memory-map library is wired into this
	// build; see DESIGN.md).
	MmapChoice MmapChoice

	// Encoding names a source encoding to transcode from before
	// searching. An empty Encoding disables transcoding. Default: "".
	Encoding Encoding

	// BufferCapacity is the initial size of the incremental line buffer,
	// when the incremental path is used. Default: linebuffer.DefaultCapacity.
	BufferCapacity int
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		LineTerminator:  '\n',
		BinaryDetection: BinaryDetectionNone(),
		MmapChoice:      MmapNever,
		BufferCapacity:  linebuffer.DefaultCapacity,
	}
}

// SearcherBuilder builds a Searcher from a Config assembled via chained
// setter calls, mirroring the teacher's own builder idiom.
type SearcherBuilder struct {
	cfg Config
}

// NewSearcherBuilder returns a builder seeded with DefaultConfig.
func NewSearcherBuilder() *SearcherBuilder {
	cfg := DefaultConfig()
	return &SearcherBuilder{cfg: cfg}
}

func (b *SearcherBuilder) LineTerminator(term byte) *SearcherBuilder {
	b.cfg.LineTerminator = term
	return b
}

func (b *SearcherBuilder) InvertMatch(yes bool) *SearcherBuilder {
	b.cfg.InvertMatch = yes
	return b
}

func (b *SearcherBuilder) LineNumber(yes bool) *SearcherBuilder {
	b.cfg.LineNumber = yes
	return b
}

func (b *SearcherBuilder) MultiLine(yes bool) *SearcherBuilder {
	b.cfg.MultiLine = yes
	return b
}

func (b *SearcherBuilder) Passthru(yes bool) *SearcherBuilder {
	b.cfg.Passthru = yes
	return b
}

func (b *SearcherBuilder) BeforeContext(n int) *SearcherBuilder {
	b.cfg.BeforeContext = n
	return b
}

func (b *SearcherBuilder) AfterContext(n int) *SearcherBuilder {
	b.cfg.AfterContext = n
	return b
}

func (b *SearcherBuilder) StopOnNonmatch(yes bool) *SearcherBuilder {
	b.cfg.StopOnNonmatch = yes
	return b
}

func (b *SearcherBuilder) MaxMatches(n uint64) *SearcherBuilder {
	b.cfg.MaxMatches = &n
	return b
}

func (b *SearcherBuilder) BinaryDetectionPolicy(d BinaryDetection) *SearcherBuilder {
	b.cfg.BinaryDetection = d
	return b
}

func (b *SearcherBuilder) HeapLimit(n int) *SearcherBuilder {
	b.cfg.HeapLimit = &n
	return b
}

func (b *SearcherBuilder) Memmap(choice MmapChoice) *SearcherBuilder {
	b.cfg.MmapChoice = choice
	return b
}

func (b *SearcherBuilder) EncodingLabel(enc Encoding) *SearcherBuilder {
	b.cfg.Encoding = enc
	return b
}

func (b *SearcherBuilder) BufferCapacity(n int) *SearcherBuilder {
	b.cfg.BufferCapacity = n
	return b
}

// ConfigError is returned by Build when the assembled Config is internally
// inconsistent.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "search: invalid configuration: " + e.Msg }

// Build validates cfg and returns a ready-to-use Searcher.
func (b *SearcherBuilder) Build() (*Searcher, error) {
	cfg := b.cfg
	if cfg.LineTerminator == 0 {
		cfg.LineTerminator = '\n'
	}
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = linebuffer.DefaultCapacity
	}
	if string(cfg.Encoding) != "" {
		if _, err := htmlindex.Get(string(cfg.Encoding)); err != nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("unrecognized encoding %q", cfg.Encoding)}
		}
	}
	return &Searcher{cfg: cfg, buf: linebuffer.New(linebuffer.Config{
		Capacity:       cfg.BufferCapacity,
		LineTerminator: cfg.LineTerminator,
		Allocation:     allocationFromHeapLimit(cfg.HeapLimit),
		Detection:      cfg.BinaryDetection.det,
	})}, nil
}

func allocationFromHeapLimit(limit *int) linebuffer.Allocation {
	if limit == nil {
		return linebuffer.Eager()
	}
	return linebuffer.ErrorLimit(*limit)
}

// Searcher drives a single search of a haystack against a Matcher,
// reporting events to a Sink. A Searcher is not safe for concurrent use,
// but may be reused across searches via its Reset semantics (each Search
// call resets internal counters itself) or duplicated across goroutines
// with Clone.
type Searcher struct {
	cfg Config
	buf *linebuffer.Buffer
}

// Clone returns an independent Searcher with the same configuration but
// its own internal buffer, suitable for use from another goroutine.
func (s *Searcher) Clone() *Searcher {
	clone, err := (&SearcherBuilder{cfg: s.cfg}).Build()
	if err != nil {
		// cfg was already validated once by the original Build call.
		panic(err)
	}
	return clone
}

// MultiLine reports whether this searcher was configured for multi-line
// matching.
func (s *Searcher) MultiLine() bool { return s.cfg.MultiLine }

// LineNumber reports whether line numbers are tracked and reported.
func (s *Searcher) LineNumber() bool { return s.cfg.LineNumber }

// SetBinaryDetection changes the binary-data detection policy for
// subsequent searches, letting a caller that searches many haystacks
// switch policy per-haystack (e.g. explicit command-line paths get a more
// lenient policy than paths discovered by directory traversal) without
// rebuilding the Searcher.
func (s *Searcher) SetBinaryDetection(d BinaryDetection) {
	s.cfg.BinaryDetection = d
	s.buf.SetDetection(d.det)
}

// SearchReader runs a search over r, an incremental or slice-backed
// source, dispatching events to sink.
func (s *Searcher) SearchReader(m Matcher, r io.Reader, sink Sink) error {
	if s.cfg.MultiLine {
		data, err := io.ReadAll(decodeReader(r, s.cfg.Encoding))
		if err != nil {
			return err
		}
		return s.SearchSlice(m, data, sink)
	}
	s.buf.Reset()
	c := newCore(s, m, sink)
	return c.runReader(decodeReader(r, s.cfg.Encoding))
}

// SearchSlice runs a search over an in-memory slice, dispatching events to
// sink. This is the path used for multi-line searches and for any source
// already fully buffered in memory.
func (s *Searcher) SearchSlice(m Matcher, data []byte, sink Sink) error {
	c := newCore(s, m, sink)
	return c.runSlice(data)
}

// decodeReader wraps r in a transcoding reader when enc names a non-empty
// encoding, honoring any BOM the source declares. An empty enc passes r
// through unchanged.
func decodeReader(r io.Reader, enc Encoding) io.Reader {
	if string(enc) == "" {
		return r
	}
	e, err := htmlindex.Get(string(enc))
	if err != nil {
		return r
	}
	return transform.NewReader(bufio.NewReader(r), e.NewDecoder())
}

var errStoppedEarly = errors.New("search: stopped early by sink")
