// Package worker provides the glue between a compiled matcher, a
// search.Searcher, and a printer.Sink implementation: the per-haystack
// dispatch logic of opening a file (possibly via a preprocessor command or
// a decompression reader), running the search, and reporting aggregate
// results back to the caller.
package worker

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/coregx/rg/cli"
	"github.com/coregx/rg/ignore"
	"github.com/coregx/rg/internal/logging"
	"github.com/coregx/rg/printer"
	"github.com/coregx/rg/search"
)

// Haystack is a single unit of search work: a path plus the flags that
// influence how the worker treats it (spec.md §3).
type Haystack struct {
	path     string
	isStdin  bool
	explicit bool
}

// NewHaystack returns a Haystack for a file path found by directory
// traversal (not explicit, not stdin).
func NewHaystack(path string) Haystack { return Haystack{path: path} }

// NewExplicitHaystack returns a Haystack for a path named directly by the
// user on the command line.
func NewExplicitHaystack(path string) Haystack {
	return Haystack{path: path, explicit: true}
}

// NewStdinHaystack returns the one Haystack representing standard input.
func NewStdinHaystack() Haystack {
	return Haystack{path: "<stdin>", isStdin: true}
}

func (h Haystack) Path() string    { return h.path }
func (h Haystack) IsStdin() bool   { return h.isStdin }
func (h Haystack) IsExplicit() bool { return h.explicit }

// PrinterKind tags which concrete sink a Printer produces.
type PrinterKind int

const (
	PrinterStandard PrinterKind = iota
	PrinterJSON
	PrinterSummary
)

// Printer bundles the configuration needed to build a fresh sink for every
// haystack (each sink is scoped to one haystack's path, the way the
// teacher's sink_with_path is).
type Printer struct {
	Kind       PrinterKind
	W          io.Writer
	Standard   printer.StandardConfig
	JSON       printer.JSONConfig
	Summary    printer.SummaryConfig
}

// sinkResult is the narrow interface every concrete printer sink in this
// package exposes for reporting SearchResult back to the worker.
type sinkResult interface {
	search.Sink
	Stats() search.Stats
}

type summarySink struct{ *printer.Summary }

func (s summarySink) Stats() search.Stats { return s.Summary.Stats() }

// newSink builds a fresh sink scoped to path.
func (p *Printer) newSink(path string) (sinkResult, error) {
	switch p.Kind {
	case PrinterStandard:
		return printer.NewStandard(p.Standard, p.W, path), nil
	case PrinterJSON:
		return printer.NewJSON(p.JSON, p.W, path), nil
	case PrinterSummary:
		s, err := printer.NewSummary(p.Summary, p.W, path)
		if err != nil {
			return nil, err
		}
		return summarySink{s}, nil
	default:
		return nil, fmt.Errorf("worker: unknown printer kind %d", p.Kind)
	}
}

// matchCounter is implemented by sinks that can report whether any match
// occurred, independent of Stats (Summary.Finish may zero its own count on
// a binary-quit file, but the worker still wants to know a match *was*
// seen for exit-status purposes the teacher's SearchResult.has_match
// tracks via the sink, not via stats).
type matchCounter struct {
	matched bool
}

func (m *matchCounter) wrap(s search.Sink) search.Sink {
	return &matchObserver{Sink: s, counter: m}
}

type matchObserver struct {
	search.Sink
	counter *matchCounter
}

func (o *matchObserver) Matched(sr *search.Searcher, sm *search.SinkMatch) (bool, error) {
	o.counter.matched = true
	return o.Sink.Matched(sr, sm)
}

// Result is the outcome of one Search call.
type Result struct {
	HasMatch bool
	Stats    search.Stats
}

// Config holds the worker's own knobs, independent of the searcher and
// printer (spec.md §4.6/§6): preprocessor command, decompression, and the
// binary-detection policy split between explicit and implicit haystacks.
type Config struct {
	Preprocessor      string
	PreprocessorGlobs *ignore.Override
	SearchZip         bool
	BinaryImplicit    search.BinaryDetection
	BinaryExplicit    search.BinaryDetection
}

// Worker runs searches against a sequence of haystacks, dispatching each
// to the right source (stdin, preprocessor, decompressor, or plain file)
// and reporting its result through printer.
type Worker struct {
	cfg      Config
	matcher  search.Matcher
	searcher *search.Searcher
	printer  *Printer

	decompBuilder *cli.DecompressionReaderBuilder
	cmdBuilder    *cli.CommandReaderBuilder
}

// New returns a Worker. searcher and printer are exclusively owned by the
// returned Worker; use Clone to obtain an independent worker sharing the
// same immutable configuration for use from another goroutine.
func New(cfg Config, matcher search.Matcher, searcher *search.Searcher, p *Printer) *Worker {
	w := &Worker{
		cfg:        cfg,
		matcher:    matcher,
		searcher:   searcher,
		printer:    p,
		cmdBuilder: cli.NewCommandReaderBuilder().AsyncStderr(true),
	}
	if cfg.SearchZip {
		w.decompBuilder = cli.NewDecompressionReaderBuilder().AsyncStderr(true)
	}
	return w
}

// Clone returns an independent Worker with its own Searcher (via
// Searcher.Clone) and its own sink-producing Printer, sharing the
// read-only Config and Matcher. Suitable for use from a parallel pool
// worker goroutine.
func (w *Worker) Clone() *Worker {
	clone := *w
	clone.searcher = w.searcher.Clone()
	return &clone
}

// Search runs one search against h, dispatching to the appropriate
// source.
func (w *Worker) Search(h Haystack) (Result, error) {
	bin := w.cfg.BinaryImplicit
	if h.IsExplicit() {
		bin = w.cfg.BinaryExplicit
	}
	w.searcher.SetBinaryDetection(bin)

	switch {
	case h.IsStdin():
		return w.searchReader(h.path, os.Stdin)
	case w.shouldPreprocess(h.path):
		return w.searchPreprocessor(h.path)
	case w.shouldDecompress(h.path):
		return w.searchDecompress(h.path)
	default:
		return w.searchPath(h.path)
	}
}

func (w *Worker) shouldDecompress(path string) bool {
	return w.decompBuilder != nil && w.decompBuilder.GetMatcher().HasCommand(path)
}

func (w *Worker) shouldPreprocess(path string) bool {
	if w.cfg.Preprocessor == "" {
		return false
	}
	if w.cfg.PreprocessorGlobs == nil || w.cfg.PreprocessorGlobs.IsEmpty() {
		return true
	}
	return !w.cfg.PreprocessorGlobs.Matched(path, false).IsIgnore()
}

func (w *Worker) searchPreprocessor(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	cmd := exec.Command(w.cfg.Preprocessor, path)
	cmd.Stdin = f
	rdr, err := w.cmdBuilder.Build(cmd)
	if err != nil {
		return Result{}, fmt.Errorf("preprocessor command failed to start: %q: %w", cmd.Args, err)
	}
	result, searchErr := w.searchReader(path, rdr)
	closeErr := rdr.Close()
	if searchErr != nil {
		return Result{}, fmt.Errorf("preprocessor command failed: %q: %w", cmd.Args, searchErr)
	}
	if closeErr != nil {
		return Result{}, closeErr
	}
	return result, nil
}

func (w *Worker) searchDecompress(path string) (Result, error) {
	if w.decompBuilder == nil {
		return w.searchPath(path)
	}
	rdr, err := w.decompBuilder.Build(path)
	if err != nil {
		return Result{}, err
	}
	result, searchErr := w.searchReader(path, rdr)
	closeErr := rdr.Close()
	if searchErr != nil {
		return Result{}, searchErr
	}
	if closeErr != nil {
		return Result{}, closeErr
	}
	return result, nil
}

func (w *Worker) searchPath(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		logging.MarkErrored()
		return Result{}, err
	}
	defer f.Close()
	return w.searchReader(path, f)
}

func (w *Worker) searchReader(path string, r io.Reader) (Result, error) {
	sink, err := w.printer.newSink(path)
	if err != nil {
		return Result{}, err
	}
	counter := &matchCounter{}
	wrapped := counter.wrap(sink)
	if err := w.searcher.SearchReader(w.matcher, r, wrapped); err != nil {
		logging.MarkErrored()
		return Result{}, err
	}
	return Result{HasMatch: counter.matched, Stats: sink.Stats()}, nil
}

// SearchSlice is exposed for callers (e.g. multi-line mode, or tests) that
// already hold the whole haystack in memory and want to skip the
// incremental-reader path entirely.
func (w *Worker) SearchSlice(path string, data []byte) (Result, error) {
	sink, err := w.printer.newSink(path)
	if err != nil {
		return Result{}, err
	}
	counter := &matchCounter{}
	wrapped := counter.wrap(sink)
	if err := w.searcher.SearchSlice(w.matcher, data, wrapped); err != nil {
		logging.MarkErrored()
		return Result{}, err
	}
	return Result{HasMatch: counter.matched, Stats: sink.Stats()}, nil
}
