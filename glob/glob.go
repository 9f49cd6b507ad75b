// Package glob compiles Unix-style glob patterns into matchers, and groups
// many compiled globs into a GlobSet that tests a path against all of them
// in a single pass.
//
// Supported syntax:
//
//   - '?' matches any single character. Never matches '/' when the matcher
//     is built with LiteralSeparator.
//   - '*' matches zero or more characters. Never matches '/' when the
//     matcher is built with LiteralSeparator.
//   - '**' recursively matches directories, but is only meaningful in three
//     positions: a leading "**/" matches zero or more leading path
//     components; a trailing "/**" matches one or more trailing path
//     components; an interior "/**/" matches zero or more path components.
//     "**" used anywhere else is treated as two consecutive "*".
//   - "{a,b}" matches "a" or "b", where each alternate may itself be an
//     arbitrary sub-pattern. Alternates do not nest.
//   - "[ab]" matches 'a' or 'b'; "[!ab]" matches any character except 'a'
//     and 'b'. Ranges such as "[a-z]" are supported.
//   - Meta-characters can be escaped by wrapping them in a class, e.g.
//     "[*]" matches a literal '*'.
//   - When backslash escapes are enabled, '\' escapes the following
//     meta-character; '\\' matches a literal backslash.
package glob

import (
	"strings"

	"github.com/coregx/rg/regex/meta"
)

// StrategyKind categorizes the cheapest way to test a compiled Glob against
// a path, letting a GlobSet route most patterns to a hash-map lookup or an
// Aho-Corasick automaton instead of a full regex evaluation.
type StrategyKind int

const (
	// StrategyLiteral matches only one exact full path.
	StrategyLiteral StrategyKind = iota
	// StrategyBasenameLiteral matches only one exact basename.
	StrategyBasenameLiteral
	// StrategyExtension matches only one exact extension (with leading dot).
	StrategyExtension
	// StrategyPrefix matches any path with the given literal prefix.
	StrategyPrefix
	// StrategySuffix matches any path with the given literal suffix.
	StrategySuffix
	// StrategyRequiredExtension matches paths with the given extension
	// that additionally satisfy the glob's full regular expression.
	StrategyRequiredExtension
	// StrategyRegex falls back to full regular expression evaluation.
	StrategyRegex
)

// Strategy is the classification result for a compiled Glob's token stream.
type Strategy struct {
	Kind      StrategyKind
	Literal   string
	Component bool
}

// Glob is a single compiled glob pattern.
type Glob struct {
	original string
	regexStr string
	engine   *meta.Engine
	strategy Strategy
	opts     buildOpts
}

type buildOpts struct {
	literalSeparator bool
	caseInsensitive  bool
	backslashEscape  bool
}

// GlobBuilder configures and compiles a single Glob.
type GlobBuilder struct {
	glob string
	opts buildOpts
}

// NewGlobBuilder returns a builder for the given pattern. Backslash escapes
// are enabled by default, matching the teacher's Unix-only default.
func NewGlobBuilder(pattern string) *GlobBuilder {
	return &GlobBuilder{glob: pattern, opts: buildOpts{backslashEscape: true}}
}

// LiteralSeparator controls whether '*' and '?' are permitted to match '/'.
func (b *GlobBuilder) LiteralSeparator(yes bool) *GlobBuilder {
	b.opts.literalSeparator = yes
	return b
}

// CaseInsensitive enables case-insensitive matching.
func (b *GlobBuilder) CaseInsensitive(yes bool) *GlobBuilder {
	b.opts.caseInsensitive = yes
	return b
}

// BackslashEscape controls whether '\' escapes the following meta-character.
func (b *GlobBuilder) BackslashEscape(yes bool) *GlobBuilder {
	b.opts.backslashEscape = yes
	return b
}

// Build compiles the configured pattern into a Glob.
func (b *GlobBuilder) Build() (*Glob, error) {
	toks, err := parse(b.glob, b.opts.backslashEscape)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if b.opts.caseInsensitive {
		sb.WriteString("(?i)")
	}
	sb.WriteString("^(?:")
	renderSeq(&sb, toks, b.opts.literalSeparator)
	sb.WriteString(")$")
	reStr := sb.String()

	eng, err := meta.Compile(reStr)
	if err != nil {
		return nil, newErrorMsg(b.glob, ErrRegex, err.Error())
	}

	strat := classify(toks)
	return &Glob{
		original: b.glob,
		regexStr: reStr,
		engine:   eng,
		strategy: strat,
		opts:     b.opts,
	}, nil
}

// New compiles pattern with the default options (backslash escapes enabled,
// literal_separator and case_insensitive disabled).
func New(pattern string) (*Glob, error) {
	return NewGlobBuilder(pattern).Build()
}

// String returns the original, uncompiled pattern.
func (g *Glob) String() string { return g.original }

// Regex returns the regular expression the glob was translated into.
func (g *Glob) Regex() string { return g.regexStr }

// Strategy returns the dispatch strategy a GlobSet would select for this
// glob.
func (g *Glob) Strategy() Strategy { return g.strategy }

// GlobMatcher matches a single compiled Glob against candidate paths.
type GlobMatcher struct {
	glob *Glob
}

// CompileMatcher returns a standalone matcher for this glob.
func (g *Glob) CompileMatcher() *GlobMatcher { return &GlobMatcher{glob: g} }

// IsMatch reports whether path matches the glob.
func (m *GlobMatcher) IsMatch(path string) bool {
	return m.glob.engine.IsMatch(normalizePath([]byte(path)))
}

// IsMatchBytes reports whether the byte-slice path matches the glob.
func (m *GlobMatcher) IsMatchBytes(path []byte) bool {
	return m.glob.engine.IsMatch(normalizePath(path))
}

// Glob returns the underlying compiled Glob.
func (m *GlobMatcher) Glob() *Glob { return m.glob }

// Escape escapes glob meta-characters in s so that the result matches s
// literally when used as a glob pattern.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		switch c {
		case '?', '*', '[', ']', '{', '}':
			b.WriteByte('[')
			b.WriteRune(c)
			b.WriteByte(']')
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
