package search

import (
	"github.com/coregx/rg/regex/meta"
)

// LineMatchKind distinguishes a fast-path matcher's two possible candidate
// results: one that is already known to be a real match (Confirmed) and one
// that still needs to be verified by a full is_match call against the
// line it falls within (Candidate).
type LineMatchKind int

const (
	// LineMatchNone indicates no candidate line was found.
	LineMatchNone LineMatchKind = iota
	// LineMatchConfirmed indicates the byte offset is inside a real match.
	LineMatchConfirmed
	// LineMatchCandidate indicates the byte offset merely might be inside
	// a match; the line it falls within must still be verified.
	LineMatchCandidate
)

// LineMatch pairs a LineMatchKind with the byte offset it was found at.
// The offset is meaningless when Kind is LineMatchNone.
type LineMatch struct {
	Kind   LineMatchKind
	Offset int
}

// Matcher is the protocol the searcher core consumes to find matches
// within a haystack. It mirrors grep-matcher's Matcher trait: Find and
// IsMatch/ShortestMatch are required, while LineTerminator,
// NonMatchingBytes and FindCandidateLine are optional declarations a
// matcher may use to let the core pick a faster search strategy.
type Matcher interface {
	// Find returns the leftmost-first match in haystack at or after at,
	// or a nil Match if there is none.
	Find(haystack []byte, at int) (*Match, error)

	// IsMatch reports whether haystack contains a match anywhere at or
	// after at.
	IsMatch(haystack []byte, at int) (bool, error)

	// ShortestMatch is like IsMatch but may stop scanning as soon as it
	// knows whether a match exists, without necessarily locating the
	// leftmost-first boundaries. The core only cares about the boolean.
	ShortestMatch(haystack []byte, at int) (bool, error)

	// FindCandidateLine returns, for the fast line-oriented search path,
	// the next line that might contain a match, or a LineMatchNone
	// result if the implementation has no faster-than-Find strategy for
	// this. Matchers that cannot do better simply return LineMatchNone
	// and let the core fall back to the slow path.
	FindCandidateLine(haystack []byte, at int) (LineMatch, error)

	// LineTerminator returns the byte this matcher treats as ending a
	// line, if it has an opinion. ok is false when the matcher has no
	// particular line-terminator semantics (the common case for a
	// general-purpose regex).
	LineTerminator() (term byte, ok bool)

	// NonMatchingBytes returns the set of bytes that can never appear
	// inside any match this matcher could produce, if known. A nil
	// result means no such set is known.
	NonMatchingBytes() *ByteSet
}

// Match is a byte-offset match reported by a Matcher.
type Match struct {
	start int
	end   int
}

// NewMatch returns a Match spanning [start, end).
func NewMatch(start, end int) Match { return Match{start: start, end: end} }

// Start returns the inclusive start offset of the match.
func (m Match) Start() int { return m.start }

// End returns the exclusive end offset of the match.
func (m Match) End() int { return m.end }

// ByteSet is a set of byte values, used to declare bytes that can never
// appear within a match (most commonly, a line terminator).
type ByteSet [256]bool

// NewByteSet returns a ByteSet containing exactly the given bytes.
func NewByteSet(bs ...byte) *ByteSet {
	var s ByteSet
	for _, b := range bs {
		s[b] = true
	}
	return &s
}

// Contains reports whether b is a member of the set.
func (s *ByteSet) Contains(b byte) bool {
	if s == nil {
		return false
	}
	return s[b]
}

// RegexMatcher adapts a meta.Engine to the Matcher interface.
type RegexMatcher struct {
	engine *meta.Engine
}

// NewRegexMatcher wraps engine as a Matcher.
func NewRegexMatcher(engine *meta.Engine) *RegexMatcher {
	return &RegexMatcher{engine: engine}
}

func (m *RegexMatcher) Find(haystack []byte, at int) (*Match, error) {
	start, end, ok := m.engine.FindIndicesAt(haystack, at)
	if !ok {
		return nil, nil
	}
	match := NewMatch(start, end)
	return &match, nil
}

func (m *RegexMatcher) IsMatch(haystack []byte, at int) (bool, error) {
	if at > len(haystack) {
		return false, nil
	}
	return m.engine.IsMatch(haystack[at:]), nil
}

func (m *RegexMatcher) ShortestMatch(haystack []byte, at int) (bool, error) {
	return m.IsMatch(haystack, at)
}

// FindCandidateLine has no faster strategy than Find for a general regex
// matcher, so it always reports LineMatchNone and defers to the slow path.
func (m *RegexMatcher) FindCandidateLine(haystack []byte, at int) (LineMatch, error) {
	return LineMatch{Kind: LineMatchNone}, nil
}

// LineTerminator is unknown for a bare regex: the pattern itself may match
// across what the searcher considers a line terminator, so this matcher
// makes no declaration and the core must use the slow path.
func (m *RegexMatcher) LineTerminator() (byte, bool) { return 0, false }

// NonMatchingBytes is unknown for a bare regex.
func (m *RegexMatcher) NonMatchingBytes() *ByteSet { return nil }
