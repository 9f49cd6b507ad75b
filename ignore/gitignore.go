package ignore

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/coregx/rg/glob"
)

// MatchKind identifies the outcome of testing a path against a Gitignore or
// Override: no rule applied, the path is ignored, or the path was
// explicitly re-included by a whitelist ('!') rule.
type MatchKind int

const (
	// MatchNone means no rule in the set applied to the path.
	MatchNone MatchKind = iota
	// MatchIgnoreKind means the path should be skipped.
	MatchIgnoreKind
	// MatchWhitelistKind means the path was re-included after a prior
	// ignore rule would otherwise have excluded it.
	MatchWhitelistKind
)

// Match is the result of testing one path against a Gitignore or Override.
type Match struct {
	Kind MatchKind
	Glob *Glob // nil when Kind is MatchNone
}

// IsNone reports whether no rule applied.
func (m Match) IsNone() bool { return m.Kind == MatchNone }

// IsIgnore reports whether the path should be skipped.
func (m Match) IsIgnore() bool { return m.Kind == MatchIgnoreKind }

// IsWhitelist reports whether the path was explicitly re-included.
func (m Match) IsWhitelist() bool { return m.Kind == MatchWhitelistKind }

func noMatch() Match { return Match{Kind: MatchNone} }

// Glob is one compiled rule within a Gitignore, retained for diagnostics
// (e.g. reporting which line ignored a given path).
type Glob struct {
	From        string
	Original    string
	Actual      string
	IsWhitelist bool
	IsOnlyDir   bool
}

// Gitignore is a compiled, ordered collection of gitignore-style rules
// rooted at a directory. Later rules take precedence over earlier ones
// (last-match-wins), and a rule beginning with '!' re-includes a path an
// earlier rule excluded.
type Gitignore struct {
	set           *glob.GlobSet
	globs         []*Glob
	root          string
	numIgnores    uint64
	numWhitelists uint64
}

// Empty returns a Gitignore with no rules; it never matches anything.
func Empty() *Gitignore {
	return &Gitignore{set: glob.Empty(), root: ""}
}

// Path returns the directory this Gitignore is rooted at.
func (g *Gitignore) Path() string { return g.root }

// IsEmpty reports whether the Gitignore has no rules.
func (g *Gitignore) IsEmpty() bool { return g.set.IsEmpty() }

// Len returns the number of rules.
func (g *Gitignore) Len() int { return g.set.Len() }

// NumIgnores returns the number of ignore (non-whitelist) rules.
func (g *Gitignore) NumIgnores() uint64 { return g.numIgnores }

// NumWhitelists returns the number of whitelist ('!') rules.
func (g *Gitignore) NumWhitelists() uint64 { return g.numWhitelists }

// Matched tests path (which must be under the Gitignore's root, or already
// relative to it) against every rule, returning the outcome of the last
// rule, in declaration order, that applies to it.
func (g *Gitignore) Matched(path string, isDir bool) Match {
	rel := g.strip(path)
	return g.matchedStripped(rel, isDir)
}

// MatchedPathOrAnyParents behaves like Matched, but when path itself is not
// matched by any rule, additionally checks every ancestor directory of path
// up to (but not including) the Gitignore's root, returning the first such
// ancestor's match. This mirrors the way a rule like "node_modules/" in a
// parent directory also excludes everything beneath it.
func (g *Gitignore) MatchedPathOrAnyParents(path string, isDir bool) Match {
	rel := g.strip(path)
	if m := g.matchedStripped(rel, isDir); !m.IsNone() {
		return m
	}
	for {
		parent := filepath.Dir(rel)
		if parent == "." || parent == rel || parent == string(filepath.Separator) {
			return noMatch()
		}
		rel = parent
		if m := g.matchedStripped(rel, true); !m.IsNone() {
			return m
		}
	}
}

// strip removes the Gitignore's root prefix from path, if present.
func (g *Gitignore) strip(path string) string {
	path = filepath.ToSlash(path)
	root := filepath.ToSlash(g.root)
	if root == "" {
		return strings.TrimPrefix(path, "/")
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func (g *Gitignore) matchedStripped(relPath string, isDir bool) Match {
	if g.set.IsEmpty() || relPath == "" || relPath == "." {
		return noMatch()
	}
	c := glob.NewCandidate(relPath)
	var indices []int
	g.set.MatchesInto(c, &indices)
	for i := len(indices) - 1; i >= 0; i-- {
		gi := g.globs[indices[i]]
		if gi.IsOnlyDir && !isDir {
			continue
		}
		if gi.IsWhitelist {
			return Match{Kind: MatchWhitelistKind, Glob: gi}
		}
		return Match{Kind: MatchIgnoreKind, Glob: gi}
	}
	return noMatch()
}

// GitignoreBuilder accumulates gitignore rules, rooted at root, before
// compiling them into a Gitignore.
type GitignoreBuilder struct {
	root               string
	raw                []*Glob
	caseInsensitive    bool
	allowUnclosedClass bool
	sawFirstLine       bool
}

// NewGitignoreBuilder returns an empty builder rooted at root.
func NewGitignoreBuilder(root string) *GitignoreBuilder {
	return &GitignoreBuilder{root: root}
}

// CaseInsensitive enables case-insensitive matching for every rule added
// from this point forward.
func (b *GitignoreBuilder) CaseInsensitive(yes bool) *GitignoreBuilder {
	b.caseInsensitive = yes
	return b
}

// AllowUnclosedClass causes a rule with an unclosed "[...]" character class
// to be silently dropped instead of failing the whole build. gitignore
// implementations in the wild vary on this; git itself is lenient.
func (b *GitignoreBuilder) AllowUnclosedClass(yes bool) *GitignoreBuilder {
	b.allowUnclosedClass = yes
	return b
}

// Add reads path (a gitignore-format file) and adds each of its lines as a
// rule.
func (b *GitignoreBuilder) Add(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Path: path, Err: err}
	}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		b.AddLine(path, line, i+1)
	}
	return nil
}

// AddLine parses a single gitignore rule line, appending it to the builder
// if it is non-empty and not a comment. from and lineno are retained only
// for diagnostics.
func (b *GitignoreBuilder) AddLine(from, rawLine string, lineno int) *GitignoreBuilder {
	line := rawLine
	if !b.sawFirstLine {
		b.sawFirstLine = true
		line = strings.TrimPrefix(line, "﻿")
	}
	if line == "" || strings.HasPrefix(line, "#") {
		return b
	}

	if strings.HasSuffix(line, `\ `) {
		line = line[:len(line)-1]
	} else {
		line = strings.TrimRight(line, " \t")
	}
	if line == "" {
		return b
	}

	isWhitelist := false
	switch {
	case strings.HasPrefix(line, `\!`):
		line = "!" + line[2:]
	case strings.HasPrefix(line, `\#`):
		line = "#" + line[2:]
	case strings.HasPrefix(line, "!"):
		isWhitelist = true
		line = line[1:]
	}
	if line == "" {
		return b
	}

	isOnlyDir := false
	if strings.HasSuffix(line, "/") && !strings.HasSuffix(line, `\/`) {
		isOnlyDir = true
		line = line[:len(line)-1]
	}
	if line == "" {
		return b
	}

	anchored := strings.Contains(line, "/")
	if strings.HasPrefix(line, "/") {
		line = line[1:]
	}
	if !anchored && !strings.HasPrefix(line, "**/") {
		line = "**/" + line
	}

	b.raw = append(b.raw, &Glob{
		From:        from,
		Original:    rawLine,
		Actual:      line,
		IsWhitelist: isWhitelist,
		IsOnlyDir:   isOnlyDir,
	})
	return b
}

// Build compiles every added rule into a Gitignore.
func (b *GitignoreBuilder) Build() (*Gitignore, error) {
	setBuilder := glob.NewGlobSetBuilder()
	globs := make([]*Glob, 0, len(b.raw))
	for _, g := range b.raw {
		gb := glob.NewGlobBuilder(g.Actual).LiteralSeparator(true)
		if b.caseInsensitive {
			gb.CaseInsensitive(true)
		}
		compiled, err := gb.Build()
		if err != nil {
			if gerr, ok := err.(*glob.Error); ok && b.allowUnclosedClass &&
				gerr.Kind == glob.ErrUnclosedClass {
				continue
			}
			return nil, &Error{Path: g.From, Err: err}
		}
		setBuilder.Add(compiled)
		globs = append(globs, g)
	}
	set, err := setBuilder.Build()
	if err != nil {
		return nil, &Error{Err: err}
	}

	gi := &Gitignore{set: set, globs: globs, root: b.root}
	for _, g := range globs {
		if g.IsWhitelist {
			gi.numWhitelists++
		} else {
			gi.numIgnores++
		}
	}
	return gi, nil
}

var excludesFileRe = regexp.MustCompile(`(?im)^\s*excludesfile\s*=\s*"?\s*(\S+?)\s*"?\s*$`)

// Global builds a Gitignore from the user's global excludes file, resolved
// the way git itself does: core.excludesFile from ~/.gitconfig or the XDG
// git config, falling back to the XDG default exclude path.
func Global() (*Gitignore, error) {
	builder := NewGitignoreBuilder("")
	if path, ok := gitconfigExcludesPath(); ok {
		if err := builder.Add(path); err != nil {
			return builder.Build()
		}
	} else if path, ok := excludesFileDefault(); ok {
		if _, err := os.Stat(path); err == nil {
			if err := builder.Add(path); err != nil {
				return builder.Build()
			}
		}
	}
	return builder.Build()
}

func gitconfigExcludesPath() (string, bool) {
	if data, ok := gitconfigHomeContents(); ok {
		if path, ok := parseExcludesFile(data); ok {
			return expandTilde(path), true
		}
	}
	if data, ok := gitconfigXDGContents(); ok {
		if path, ok := parseExcludesFile(data); ok {
			return expandTilde(path), true
		}
	}
	return "", false
}

func gitconfigHomeContents() ([]byte, bool) {
	home, ok := homeDir()
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(home, ".gitconfig"))
	if err != nil {
		return nil, false
	}
	return data, true
}

func gitconfigXDGContents() ([]byte, bool) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, ok := homeDir()
		if !ok {
			return nil, false
		}
		dir = filepath.Join(home, ".config")
	}
	data, err := os.ReadFile(filepath.Join(dir, "git", "config"))
	if err != nil {
		return nil, false
	}
	return data, true
}

func parseExcludesFile(data []byte) (string, bool) {
	m := excludesFileRe.FindSubmatch(data)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

func excludesFileDefault() (string, bool) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, ok := homeDir()
		if !ok {
			return "", false
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "git", "ignore"), true
}

func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") && path != "~" {
		return path
	}
	home, ok := homeDir()
	if !ok {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func homeDir() (string, bool) {
	if h := os.Getenv("HOME"); h != "" {
		return h, true
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return h, true
}
