package printer

import (
	"fmt"
	"io"

	"github.com/coregx/rg/search"
)

// SummaryKind selects one of the six aggregate-output modes documented in
// spec.md §4.10.
type SummaryKind int

const (
	// SummaryCount prints the total matched-line count for the file.
	SummaryCount SummaryKind = iota
	// SummaryCountMatches prints the total match count (possibly several
	// per line), requiring stats tracking.
	SummaryCountMatches
	// SummaryPathWithMatch prints the path exactly when at least one
	// match occurred.
	SummaryPathWithMatch
	// SummaryPathWithoutMatch prints the path exactly when no match
	// occurred.
	SummaryPathWithoutMatch
	// SummaryQuietWithMatch prints nothing but lets the caller stop the
	// search early once a match is seen (Matched returns false).
	SummaryQuietWithMatch
	// SummaryQuietWithoutMatch prints nothing but lets the caller stop
	// the search early once a match is seen, the same as QuietWithMatch;
	// distinguished for caller-side intent (e.g. exit-code selection).
	SummaryQuietWithoutMatch
)

func (k SummaryKind) needsPath() bool {
	return k == SummaryPathWithMatch || k == SummaryPathWithoutMatch
}

func (k SummaryKind) quiet() bool {
	return k == SummaryQuietWithMatch || k == SummaryQuietWithoutMatch
}

// SummaryConfig holds the tunables of the Summary printer.
type SummaryConfig struct {
	Kind SummaryKind

	// TrackStats forces byte/line/match counters to be accumulated even
	// in a Quiet/PathWith* mode where early-exit would otherwise suppress
	// them. CountMatches always behaves as if this were set.
	TrackStats bool

	// ExcludeZero suppresses the Count/CountMatches output line for a
	// file with zero matches (like the teacher's --include-zero=false).
	ExcludeZero bool

	// PathRequired causes Begin to fail when no path is available and the
	// configured Kind needs one to print.
	PathRequired bool
}

// Summary is a search.Sink that emits at most one aggregate line per file.
type Summary struct {
	cfg          SummaryConfig
	w            *CounterWriter
	path         *Path
	matchCount   uint64
	matchedOnce  bool
	binaryQuit   bool
	stats        search.Stats
}

// NewSummary returns a Summary printer writing to w. path may be empty
// when no file path is associated with the haystack.
func NewSummary(cfg SummaryConfig, w io.Writer, path string) (*Summary, error) {
	s := &Summary{cfg: cfg, w: NewCounterWriter(w)}
	if path != "" {
		s.path = NewPath(path)
	}
	if cfg.Kind.needsPath() && s.path == nil && cfg.PathRequired {
		return nil, fmt.Errorf("printer: summary mode requires a path but none was given")
	}
	return s, nil
}

func (s *Summary) Begin(*search.Searcher) (bool, error) { return true, nil }

func (s *Summary) Matched(_ *search.Searcher, m *search.SinkMatch) (bool, error) {
	s.matchedOnce = true
	s.matchCount++
	s.stats.Matches += uint64(max1(len(m.Ranges)))
	s.stats.MatchedLines++
	keepGoing := true
	switch s.cfg.Kind {
	case SummaryQuietWithMatch, SummaryPathWithMatch:
		keepGoing = s.cfg.TrackStats
	}
	return keepGoing, nil
}

func (s *Summary) Context(*search.Searcher, *search.SinkContext) (bool, error) {
	return true, nil
}

func (s *Summary) ContextBreak(*search.Searcher) (bool, error) { return true, nil }

func (s *Summary) BinaryData(_ *search.Searcher, _ int) (bool, error) {
	// A Quit-mode binary hit must suppress this file's count entirely
	// (spec.md §4.10, §9 OQ2): the file is silently dropped rather than
	// reporting a partial total.
	s.binaryQuit = true
	s.matchCount = 0
	return false, nil
}

func (s *Summary) Finish(_ *search.Searcher, f *search.SinkFinish) error {
	s.stats.BytesSearched += f.ByteCount
	s.stats.Searches++
	if s.matchedOnce {
		s.stats.SearchesWithMatch++
	}
	s.stats.BytesPrinted = s.w.TotalCount()
	if s.binaryQuit {
		return nil
	}

	showCount := !s.cfg.ExcludeZero || s.matchCount > 0
	switch s.cfg.Kind {
	case SummaryCount:
		if !showCount {
			return nil
		}
		return s.writeCountLine(s.matchCount)
	case SummaryCountMatches:
		if !showCount {
			return nil
		}
		return s.writeCountLine(s.stats.Matches)
	case SummaryPathWithMatch:
		if s.matchCount > 0 {
			return s.writePathLine()
		}
	case SummaryPathWithoutMatch:
		if s.matchCount == 0 {
			return s.writePathLine()
		}
	case SummaryQuietWithMatch, SummaryQuietWithoutMatch:
	}
	return nil
}

func (s *Summary) writeCountLine(n uint64) error {
	if s.path != nil {
		if _, err := fmt.Fprintf(s.w, "%s:", s.path.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(s.w, "%d\n", n)
	return err
}

func (s *Summary) writePathLine() error {
	if s.path == nil {
		return nil
	}
	_, err := fmt.Fprintf(s.w, "%s\n", s.path.String())
	return err
}

// Stats returns the accumulated statistics for this printer's search.
func (s *Summary) Stats() search.Stats { return s.stats }

// MatchCount returns the number of matches observed (zero if binary-quit
// suppressed the file).
func (s *Summary) MatchCount() uint64 { return s.matchCount }
