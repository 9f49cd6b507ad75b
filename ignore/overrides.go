package ignore

// Override is a set of glob overrides, as specified on the command line
// with -g/--glob or -i. It has inverted polarity relative to a Gitignore:
// a bare pattern is a whitelist (an explicit include), while a pattern
// prefixed with '!' is an ignore. When at least one whitelist pattern is
// present, any non-directory path that matches none of the patterns is
// implicitly ignored.
type Override struct {
	gi          *Gitignore
	numIncludes uint64
}

// IsEmpty reports whether the override set has no patterns.
func (o *Override) IsEmpty() bool { return o.gi.IsEmpty() }

// Len returns the number of patterns.
func (o *Override) Len() int { return o.gi.Len() }

// Path returns the directory the override set is relative to.
func (o *Override) Path() string { return o.gi.Path() }

// Matched tests path against every override pattern, inverting the
// underlying Gitignore outcome: a Gitignore ignore-match means "explicitly
// excluded" and a Gitignore whitelist-match means "explicitly included".
// When the set has whitelist patterns but none matched, and path is not a
// directory, the path is implicitly excluded — override sets only include
// what they name.
func (o *Override) Matched(path string, isDir bool) Match {
	if o.gi.IsEmpty() {
		return noMatch()
	}
	rel := o.gi.strip(path)
	m := o.gi.matchedStripped(rel, isDir)
	switch {
	case m.IsWhitelist():
		return Match{Kind: MatchIgnoreKind, Glob: m.Glob}
	case m.IsIgnore():
		return Match{Kind: MatchWhitelistKind, Glob: m.Glob}
	default:
		if o.numIncludes > 0 && !isDir {
			return Match{Kind: MatchIgnoreKind}
		}
		return noMatch()
	}
}

// OverrideBuilder accumulates override patterns, rooted at root, before
// compiling them into an Override.
type OverrideBuilder struct {
	gib *GitignoreBuilder
}

// NewOverrideBuilder returns an empty builder rooted at root.
func NewOverrideBuilder(root string) *OverrideBuilder {
	return &OverrideBuilder{gib: NewGitignoreBuilder(root)}
}

// CaseInsensitive enables case-insensitive matching for every pattern added
// from this point forward.
func (b *OverrideBuilder) CaseInsensitive(yes bool) *OverrideBuilder {
	b.gib.CaseInsensitive(yes)
	return b
}

// Add parses one pattern, as given on the command line. A bare pattern is
// an include, and a leading '!' makes it an exclude — the opposite of a
// gitignore line, which is why Matched swaps ignore/whitelist below. Fed
// straight into the gitignore line parser, a bare pattern becomes a
// gitignore ignore rule and a "!pattern" becomes a gitignore whitelist
// rule, which is exactly the inversion Matched expects.
func (b *OverrideBuilder) Add(pattern string) error {
	b.gib.AddLine("", pattern, 0)
	return nil
}

// Build compiles every added pattern into an Override.
func (b *OverrideBuilder) Build() (*Override, error) {
	gi, err := b.gib.Build()
	if err != nil {
		return nil, err
	}
	return &Override{gi: gi, numIncludes: gi.numIgnores}, nil
}
