package glob

import (
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
)

// GlobSet groups a collection of globs so that a path can be tested against
// all of them in a single pass. Construction is two-phase: add patterns to
// a GlobSetBuilder, then Build the set once all patterns are known. Globs
// are dispatched to whichever of several internal strategies (literal
// hash-map lookup, Aho-Corasick prefix/suffix scan, or full regex
// evaluation) is cheapest for that glob's shape; a GlobSet therefore rarely
// evaluates a regex at all.
type GlobSet struct {
	length int
	strats []setStrategy
}

// Empty returns a GlobSet that matches nothing.
func Empty() *GlobSet { return &GlobSet{} }

// IsEmpty reports whether the set contains no globs.
func (s *GlobSet) IsEmpty() bool { return s.length == 0 }

// Len returns the number of globs in the set.
func (s *GlobSet) Len() int { return s.length }

// IsMatch reports whether any glob in the set matches path.
func (s *GlobSet) IsMatch(path string) bool {
	return s.IsMatchCandidate(NewCandidate(path))
}

// MatchesAll reports whether every glob in the set matches path. An empty
// set matches everything, since there are vacuously zero globs to fail.
func (s *GlobSet) MatchesAll(path string) bool {
	return s.MatchesAllCandidate(NewCandidate(path))
}

// MatchesAllCandidate reports whether every glob in the set matches c.
func (s *GlobSet) MatchesAllCandidate(c *Candidate) bool {
	var into []int
	s.MatchesInto(c, &into)
	return len(into) == s.length
}

// IsMatchCandidate reports whether any glob in the set matches c.
func (s *GlobSet) IsMatchCandidate(c *Candidate) bool {
	if s.IsEmpty() {
		return false
	}
	for _, strat := range s.strats {
		if strat.isMatch(c) {
			return true
		}
	}
	return false
}

// MatchesInto appends the index of every glob that matches c to into,
// sorted in ascending order with duplicates removed. into is cleared first.
func (s *GlobSet) MatchesInto(c *Candidate, into *[]int) {
	*into = (*into)[:0]
	if s.IsEmpty() {
		return
	}
	for _, strat := range s.strats {
		strat.matchesInto(c, into)
	}
	sort.Ints(*into)
	*into = dedupInts(*into)
}

// Matches returns the index of every glob that matches path.
func (s *GlobSet) Matches(path string) []int {
	var into []int
	s.MatchesInto(NewCandidate(path), &into)
	return into
}

func dedupInts(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

type setStrategy interface {
	isMatch(c *Candidate) bool
	matchesInto(c *Candidate, into *[]int)
}

// GlobSetBuilder accumulates glob patterns before compiling them into a
// GlobSet.
type GlobSetBuilder struct {
	globs []*Glob
}

// NewGlobSetBuilder returns an empty builder.
func NewGlobSetBuilder() *GlobSetBuilder { return &GlobSetBuilder{} }

// Add appends a compiled glob to the builder.
func (b *GlobSetBuilder) Add(g *Glob) *GlobSetBuilder {
	b.globs = append(b.globs, g)
	return b
}

// Build compiles every added glob into a GlobSet.
func (b *GlobSetBuilder) Build() (*GlobSet, error) {
	if len(b.globs) == 0 {
		return Empty(), nil
	}

	lits := map[string][]int{}
	baseLits := map[string][]int{}
	exts := map[string][]int{}
	var prefixes, suffixes []acEntry
	reqExts := map[string][]reqExtEntry{}
	var regexes []int

	for i, g := range b.globs {
		switch g.strategy.Kind {
		case StrategyLiteral:
			lits[g.strategy.Literal] = append(lits[g.strategy.Literal], i)
		case StrategyBasenameLiteral:
			baseLits[g.strategy.Literal] = append(baseLits[g.strategy.Literal], i)
		case StrategyExtension:
			exts[g.strategy.Literal] = append(exts[g.strategy.Literal], i)
		case StrategyPrefix:
			prefixes = append(prefixes, acEntry{lit: g.strategy.Literal, idx: i})
		case StrategySuffix:
			if g.strategy.Component {
				lit := strings.TrimPrefix(g.strategy.Literal, "/")
				lits[lit] = append(lits[lit], i)
			}
			suffixes = append(suffixes, acEntry{lit: g.strategy.Literal, idx: i})
		case StrategyRequiredExtension:
			reqExts[g.strategy.Literal] = append(reqExts[g.strategy.Literal], reqExtEntry{idx: i, engine: g})
		default:
			regexes = append(regexes, i)
		}
	}

	var strats []setStrategy
	if len(exts) > 0 {
		strats = append(strats, literalMapStrategy{m: exts, field: fieldExt})
	}
	if len(baseLits) > 0 {
		strats = append(strats, literalMapStrategy{m: baseLits, field: fieldBasename})
	}
	if len(lits) > 0 {
		strats = append(strats, literalMapStrategy{m: lits, field: fieldPath})
	}
	if len(suffixes) > 0 {
		strat, err := newACStrategy(suffixes, false)
		if err != nil {
			return nil, err
		}
		strats = append(strats, strat)
	}
	if len(prefixes) > 0 {
		strat, err := newACStrategy(prefixes, true)
		if err != nil {
			return nil, err
		}
		strats = append(strats, strat)
	}
	if len(reqExts) > 0 {
		strats = append(strats, requiredExtStrategy{m: reqExts})
	}
	if len(regexes) > 0 {
		strats = append(strats, regexStrategy{globs: b.globs, idxs: regexes})
	}

	return &GlobSet{length: len(b.globs), strats: strats}, nil
}

type pathField int

const (
	fieldPath pathField = iota
	fieldBasename
	fieldExt
)

type literalMapStrategy struct {
	m     map[string][]int
	field pathField
}

func (s literalMapStrategy) keyFor(c *Candidate) []byte {
	switch s.field {
	case fieldBasename:
		return c.basename
	case fieldExt:
		return c.ext
	default:
		return c.path
	}
}

func (s literalMapStrategy) isMatch(c *Candidate) bool {
	k := s.keyFor(c)
	if len(k) == 0 && s.field != fieldPath {
		return false
	}
	_, ok := s.m[string(k)]
	return ok
}

func (s literalMapStrategy) matchesInto(c *Candidate, into *[]int) {
	k := s.keyFor(c)
	if len(k) == 0 && s.field != fieldPath {
		return
	}
	if hits, ok := s.m[string(k)]; ok {
		*into = append(*into, hits...)
	}
}

type acEntry struct {
	lit string
	idx int
}

// acStrategy matches candidate prefixes or suffixes against a set of
// literals, using an Aho-Corasick automaton as a cheap any-of-these-appear
// pre-filter before confirming an exact prefix/suffix match.
type acStrategy struct {
	auto    *ahocorasick.Automaton
	entries []acEntry
	longest int
	prefix  bool
}

func newACStrategy(entries []acEntry, prefix bool) (*acStrategy, error) {
	builder := ahocorasick.NewBuilder()
	longest := 0
	for _, e := range entries {
		builder.AddPattern([]byte(e.lit))
		if len(e.lit) > longest {
			longest = len(e.lit)
		}
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, newErrorMsg("", ErrRegex, err.Error())
	}
	return &acStrategy{auto: auto, entries: entries, longest: longest, prefix: prefix}, nil
}

func (s *acStrategy) window(c *Candidate) []byte {
	if s.prefix {
		return c.pathPrefix(s.longest)
	}
	return c.pathSuffix(s.longest)
}

func (s *acStrategy) isMatch(c *Candidate) bool {
	w := s.window(c)
	if !s.auto.IsMatch(w) {
		return false
	}
	for _, e := range s.entries {
		if s.prefix {
			if strings.HasPrefix(string(c.path), e.lit) {
				return true
			}
		} else if strings.HasSuffix(string(c.path), e.lit) {
			return true
		}
	}
	return false
}

func (s *acStrategy) matchesInto(c *Candidate, into *[]int) {
	for _, e := range s.entries {
		if s.prefix {
			if strings.HasPrefix(string(c.path), e.lit) {
				*into = append(*into, e.idx)
			}
		} else if strings.HasSuffix(string(c.path), e.lit) {
			*into = append(*into, e.idx)
		}
	}
}

type reqExtEntry struct {
	idx    int
	engine *Glob
}

type requiredExtStrategy struct {
	m map[string][]reqExtEntry
}

func (s requiredExtStrategy) isMatch(c *Candidate) bool {
	if len(c.ext) == 0 {
		return false
	}
	for _, e := range s.m[string(c.ext)] {
		if e.engine.engine.IsMatch(c.path) {
			return true
		}
	}
	return false
}

func (s requiredExtStrategy) matchesInto(c *Candidate, into *[]int) {
	if len(c.ext) == 0 {
		return
	}
	for _, e := range s.m[string(c.ext)] {
		if e.engine.engine.IsMatch(c.path) {
			*into = append(*into, e.idx)
		}
	}
}

type regexStrategy struct {
	globs []*Glob
	idxs  []int
}

func (s regexStrategy) isMatch(c *Candidate) bool {
	for _, i := range s.idxs {
		if s.globs[i].engine.IsMatch(c.path) {
			return true
		}
	}
	return false
}

func (s regexStrategy) matchesInto(c *Candidate, into *[]int) {
	for _, i := range s.idxs {
		if s.globs[i].engine.IsMatch(c.path) {
			*into = append(*into, i)
		}
	}
}
