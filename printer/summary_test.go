package printer

import (
	"bytes"
	"testing"

	"github.com/coregx/rg/search"
)

func matchEvent(n int) *search.SinkMatch {
	ranges := make([]search.Range, n)
	for i := range ranges {
		ranges[i] = search.Range{Start: i, End: i + 1}
	}
	return &search.SinkMatch{Bytes: []byte("line\n"), Ranges: ranges}
}

func TestSummaryCount(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSummary(SummaryConfig{Kind: SummaryCount}, &buf, "file.txt")
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.Matched(nil, matchEvent(1)); err != nil {
			t.Fatalf("Matched: %v", err)
		}
	}
	if err := s.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got, want := buf.String(), "file.txt:3\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSummaryCountMatches(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSummary(SummaryConfig{Kind: SummaryCountMatches, TrackStats: true}, &buf, "file.txt")
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	if _, err := s.Matched(nil, matchEvent(2)); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if _, err := s.Matched(nil, matchEvent(3)); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if err := s.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got, want := buf.String(), "file.txt:5\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSummaryPathWithMatch(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSummary(SummaryConfig{Kind: SummaryPathWithMatch}, &buf, "file.txt")
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	if _, err := s.Matched(nil, matchEvent(1)); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if err := s.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got, want := buf.String(), "file.txt\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSummaryPathWithoutMatchSuppressedOnMatch(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSummary(SummaryConfig{Kind: SummaryPathWithoutMatch}, &buf, "file.txt")
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	if _, err := s.Matched(nil, matchEvent(1)); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if err := s.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got := buf.String(); got != "" {
		t.Fatalf("expected no output for a file with a match, got %q", got)
	}
}

func TestSummaryPathWithoutMatchPrintsOnNoMatch(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSummary(SummaryConfig{Kind: SummaryPathWithoutMatch}, &buf, "file.txt")
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	if err := s.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got, want := buf.String(), "file.txt\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSummaryQuietStopsAfterFirstMatch(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSummary(SummaryConfig{Kind: SummaryQuietWithMatch}, &buf, "")
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	keepGoing, err := s.Matched(nil, matchEvent(1))
	if err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if keepGoing {
		t.Fatalf("expected Matched to signal stop once a match is found in quiet mode")
	}
	if err := s.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got := buf.String(); got != "" {
		t.Fatalf("expected quiet mode to print nothing, got %q", got)
	}
}

func TestSummaryBinaryQuitSuppressesCount(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSummary(SummaryConfig{Kind: SummaryCount}, &buf, "file.txt")
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	if _, err := s.Matched(nil, matchEvent(1)); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	keepGoing, err := s.BinaryData(nil, 5)
	if err != nil {
		t.Fatalf("BinaryData: %v", err)
	}
	if keepGoing {
		t.Fatalf("expected BinaryData to stop the search")
	}
	if err := s.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got := buf.String(); got != "" {
		t.Fatalf("expected a binary-quit file to be suppressed entirely, got %q", got)
	}
	if s.MatchCount() != 0 {
		t.Fatalf("expected MatchCount to be zeroed on binary-quit, got %d", s.MatchCount())
	}
}

func TestSummaryExcludeZero(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSummary(SummaryConfig{Kind: SummaryCount, ExcludeZero: true}, &buf, "file.txt")
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	if err := s.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got := buf.String(); got != "" {
		t.Fatalf("expected ExcludeZero to suppress a zero-match file, got %q", got)
	}
}

func TestSummaryPathRequired(t *testing.T) {
	_, err := NewSummary(SummaryConfig{Kind: SummaryPathWithMatch, PathRequired: true}, &bytes.Buffer{}, "")
	if err == nil {
		t.Fatalf("expected an error when a path-needing mode is given no path")
	}
}
