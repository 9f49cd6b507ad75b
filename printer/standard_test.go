package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/coregx/rg/search"
)

func TestStandardMatchedLineFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultStandardConfig()
	cfg.Path = true
	cfg.LineNumber = true
	s := NewStandard(cfg, &buf, "file.txt")

	if _, err := s.Begin(nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	m := &search.SinkMatch{
		Bytes:              []byte("hello world\n"),
		AbsoluteByteOffset: 0,
		LineNumber:         3,
		Ranges:             []search.Range{{Start: 0, End: 5}},
	}
	if _, err := s.Matched(nil, m); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if err := s.Finish(nil, &search.SinkFinish{ByteCount: 12}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got := buf.String()
	want := "file.txt:3:hello world\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStandardNoPathSuppressesPathField(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultStandardConfig()
	cfg.Path = false
	cfg.LineNumber = true
	s := NewStandard(cfg, &buf, "file.txt")

	m := &search.SinkMatch{Bytes: []byte("line\n"), LineNumber: 1}
	if _, err := s.Matched(nil, m); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if got, want := buf.String(), "1:line\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStandardHeadingPrintsPathOnceNotPerLine(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultStandardConfig()
	cfg.Path = true
	cfg.Heading = true
	s := NewStandard(cfg, &buf, "file.txt")

	first := &search.SinkMatch{Bytes: []byte("one\n")}
	second := &search.SinkMatch{Bytes: []byte("two\n")}
	if _, err := s.Matched(nil, first); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if _, err := s.Matched(nil, second); err != nil {
		t.Fatalf("Matched: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "file.txt") != 1 {
		t.Fatalf("expected path to be printed exactly once under Heading, got %q", out)
	}
	if !strings.Contains(out, "one\ntwo\n") {
		t.Fatalf("expected both match lines with no per-line path prefix, got %q", out)
	}
}

func TestStandardBinaryDataIncludesPathWhenKnown(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultStandardConfig()
	cfg.Path = true
	s := NewStandard(cfg, &buf, "data.bin")

	if _, err := s.BinaryData(nil, 42); err != nil {
		t.Fatalf("BinaryData: %v", err)
	}
	if got := buf.String(); !strings.HasPrefix(got, "data.bin: ") {
		t.Fatalf("expected the binary-data notice to be prefixed with the path, got %q", got)
	}
}

func TestStandardBinaryDataOmitsPathWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultStandardConfig()
	cfg.Path = false
	s := NewStandard(cfg, &buf, "data.bin")

	if _, err := s.BinaryData(nil, 42); err != nil {
		t.Fatalf("BinaryData: %v", err)
	}
	if got := buf.String(); strings.Contains(got, "data.bin") {
		t.Fatalf("expected no path in the notice when Path is disabled, got %q", got)
	}
}

func TestStandardMaxColumnsOmitsOverlongLine(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultStandardConfig()
	cfg.MaxColumns = 5
	s := NewStandard(cfg, &buf, "")

	m := &search.SinkMatch{
		Bytes:  []byte("a very long line indeed\n"),
		Ranges: []search.Range{{Start: 0, End: 1}},
	}
	if _, err := s.Matched(nil, m); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "Omitted long line") {
		t.Fatalf("expected an omission notice, got %q", got)
	}
}

func TestStandardReplacement(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultStandardConfig()
	cfg.Replacement = []byte("[$0]")
	s := NewStandard(cfg, &buf, "")

	m := &search.SinkMatch{
		Bytes:  []byte("see needle here\n"),
		Ranges: []search.Range{{Start: 4, End: 10}},
	}
	if _, err := s.Matched(nil, m); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if got, want := buf.String(), "see [needle] here\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStandardStats(t *testing.T) {
	var buf bytes.Buffer
	s := NewStandard(DefaultStandardConfig(), &buf, "")
	m := &search.SinkMatch{Bytes: []byte("x\n"), Ranges: []search.Range{{Start: 0, End: 1}}}
	if _, err := s.Matched(nil, m); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if err := s.Finish(nil, &search.SinkFinish{ByteCount: 2}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	stats := s.Stats()
	if stats.Matches != 1 || stats.SearchesWithMatch != 1 || stats.Searches != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
