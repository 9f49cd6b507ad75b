package glob

import (
	"fmt"
	"regexp"
	"strings"
)

type tokKind int

const (
	tLiteral tokKind = iota
	tAny
	tZeroOrMore
	tRecursivePrefix
	tRecursiveSuffix
	tRecursiveZeroOrMore
	tMatchAll
	tClass
	tAlternates
)

type classRange struct{ lo, hi rune }

type token struct {
	kind    tokKind
	lit     string
	negated bool
	ranges  []classRange
	alts    [][]token
}

type parser struct {
	glob            string
	r               []rune
	i               int
	backslashEscape bool
}

// parse tokenizes a glob pattern, resolving "**" into its recursive-prefix,
// recursive-suffix, recursive-infix, or match-all forms depending on its
// surrounding '/' boundaries.
func parse(glob string, backslashEscape bool) ([]token, error) {
	p := &parser{glob: glob, r: []rune(glob), backslashEscape: backslashEscape}
	toks, err := p.parseSequence("")
	if err != nil {
		return nil, err
	}
	if p.i < len(p.r) && p.r[p.i] == '}' {
		return nil, newError(glob, ErrUnopenedAlternates)
	}
	return collapseStars(toks), nil
}

func (p *parser) parseSequence(stops string) ([]token, error) {
	var toks []token
	var lit []rune
	flush := func() {
		if len(lit) > 0 {
			toks = append(toks, token{kind: tLiteral, lit: string(lit)})
			lit = nil
		}
	}
	for p.i < len(p.r) {
		c := p.r[p.i]
		if stops != "" && strings.ContainsRune(stops, c) {
			break
		}
		switch c {
		case '\\':
			p.i++
			if p.i >= len(p.r) {
				return nil, newError(p.glob, ErrDanglingEscape)
			}
			if p.backslashEscape {
				lit = append(lit, p.r[p.i])
				p.i++
			} else {
				lit = append(lit, '\\')
			}
		case '?':
			flush()
			toks = append(toks, token{kind: tAny})
			p.i++
		case '*':
			start := p.i
			for p.i < len(p.r) && p.r[p.i] == '*' {
				p.i++
			}
			flush()
			if p.i-start >= 2 {
				toks = append(toks, token{kind: tZeroOrMore, lit: "**"})
			} else {
				toks = append(toks, token{kind: tZeroOrMore})
			}
		case '[':
			flush()
			tok, err := p.parseClass()
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
		case '{':
			flush()
			p.i++
			var branches [][]token
			for {
				branch, err := p.parseSequence(",}")
				if err != nil {
					return nil, err
				}
				branches = append(branches, branch)
				if p.i >= len(p.r) {
					return nil, newError(p.glob, ErrUnclosedAlternates)
				}
				if p.r[p.i] == ',' {
					p.i++
					continue
				}
				break
			}
			p.i++ // consume '}'
			toks = append(toks, token{kind: tAlternates, alts: branches})
		case '}':
			return nil, newError(p.glob, ErrUnopenedAlternates)
		default:
			lit = append(lit, c)
			p.i++
		}
	}
	flush()
	return toks, nil
}

func (p *parser) parseClass() (token, error) {
	p.i++ // consume '['
	neg := false
	if p.i < len(p.r) && (p.r[p.i] == '!' || p.r[p.i] == '^') {
		neg = true
		p.i++
	}
	var ranges []classRange
	first := true
	for {
		if p.i >= len(p.r) {
			return token{}, newError(p.glob, ErrUnclosedClass)
		}
		c := p.r[p.i]
		if c == ']' && !first {
			p.i++
			break
		}
		first = false
		lo := c
		p.i++
		if p.i+1 < len(p.r) && p.r[p.i] == '-' && p.r[p.i+1] != ']' {
			p.i++
			hi := p.r[p.i]
			p.i++
			if hi < lo {
				return token{}, newErrorMsg(p.glob, ErrInvalidRange,
					fmt.Sprintf("invalid range; %q > %q", lo, hi))
			}
			ranges = append(ranges, classRange{lo, hi})
		} else {
			ranges = append(ranges, classRange{lo, lo})
		}
	}
	return token{kind: tClass, negated: neg, ranges: ranges}, nil
}

// collapseStars rewrites "**" tokens bordered by literal '/' boundaries (or
// the start/end of the pattern) into their recursive forms.
func collapseStars(toks []token) []token {
	out := make([]token, 0, len(toks))
	for idx := 0; idx < len(toks); idx++ {
		t := toks[idx]
		if t.kind != tZeroOrMore || t.lit != "**" {
			out = append(out, t)
			continue
		}

		atStart := idx == 0
		atEnd := idx == len(toks)-1
		prevEndsSlash := !atStart && toks[idx-1].kind == tLiteral &&
			strings.HasSuffix(toks[idx-1].lit, "/")
		nextStartsSlash := !atEnd && toks[idx+1].kind == tLiteral &&
			strings.HasPrefix(toks[idx+1].lit, "/")

		switch {
		case atStart && atEnd:
			out = append(out, token{kind: tMatchAll})
		case atStart && nextStartsSlash:
			toks[idx+1].lit = toks[idx+1].lit[1:]
			out = append(out, token{kind: tRecursivePrefix})
		case atEnd && prevEndsSlash:
			out[len(out)-1].lit = out[len(out)-1].lit[:len(out[len(out)-1].lit)-1]
			out = append(out, token{kind: tRecursiveSuffix})
		case prevEndsSlash && nextStartsSlash:
			out[len(out)-1].lit = out[len(out)-1].lit[:len(out[len(out)-1].lit)-1]
			toks[idx+1].lit = toks[idx+1].lit[1:]
			out = append(out, token{kind: tRecursiveZeroOrMore})
		default:
			// "**" used outside any of the three recognized positions is
			// legal and simply means "match anything", same as two
			// consecutive single stars.
			out = append(out, token{kind: tZeroOrMore}, token{kind: tZeroOrMore})
		}
	}
	return out
}

// renderSeq writes the regular expression fragment for toks to b.
func renderSeq(b *strings.Builder, toks []token, literalSeparator bool) {
	for _, t := range toks {
		switch t.kind {
		case tLiteral:
			b.WriteString(regexp.QuoteMeta(t.lit))
		case tAny:
			if literalSeparator {
				b.WriteString(`[^/]`)
			} else {
				b.WriteString(`(?s:.)`)
			}
		case tZeroOrMore:
			if literalSeparator {
				b.WriteString(`[^/]*`)
			} else {
				b.WriteString(`(?s:.)*`)
			}
		case tMatchAll:
			b.WriteString(`(?s:.)*`)
		case tRecursivePrefix:
			b.WriteString(`(?:(?s:.)*/)?`)
		case tRecursiveSuffix:
			b.WriteString(`/(?s:.)+`)
		case tRecursiveZeroOrMore:
			b.WriteString(`/(?:(?s:.)*/)?`)
		case tClass:
			renderClass(b, t)
		case tAlternates:
			b.WriteString(`(?:`)
			for i, branch := range t.alts {
				if i > 0 {
					b.WriteString(`|`)
				}
				renderSeq(b, branch, literalSeparator)
			}
			b.WriteString(`)`)
		}
	}
}

func renderClass(b *strings.Builder, t token) {
	b.WriteByte('[')
	if t.negated {
		b.WriteByte('^')
	}
	for _, r := range t.ranges {
		writeClassRune(b, r.lo)
		if r.hi != r.lo {
			b.WriteByte('-')
			writeClassRune(b, r.hi)
		}
	}
	b.WriteByte(']')
}

func writeClassRune(b *strings.Builder, r rune) {
	switch r {
	case '\\', ']', '^', '-':
		b.WriteByte('\\')
		b.WriteRune(r)
	default:
		b.WriteRune(r)
	}
}

// classify determines the cheapest dispatch strategy for a token stream,
// mirroring the analysis a GlobSet performs over each pattern it is given.
func classify(toks []token) Strategy {
	if allLit, s := literalOf(toks); allLit {
		if strings.Contains(s, "/") {
			return Strategy{Kind: StrategyLiteral, Literal: s}
		}
		return Strategy{Kind: StrategyBasenameLiteral, Literal: s}
	}

	if len(toks) == 2 && toks[0].kind == tZeroOrMore && toks[0].lit == "" &&
		toks[1].kind == tLiteral {
		ext := toks[1].lit
		if strings.HasPrefix(ext, ".") && !strings.Contains(ext, "/") &&
			strings.Count(ext, ".") == 1 {
			return Strategy{Kind: StrategyExtension, Literal: ext}
		}
	}

	if len(toks) == 2 && toks[0].kind == tRecursivePrefix && toks[1].kind == tLiteral {
		if !strings.Contains(toks[1].lit, "/") {
			return Strategy{Kind: StrategyBasenameLiteral, Literal: toks[1].lit}
		}
	}

	if len(toks) == 2 && toks[0].kind == tLiteral && toks[1].kind == tZeroOrMore &&
		toks[1].lit == "" {
		return Strategy{Kind: StrategyPrefix, Literal: toks[0].lit}
	}

	if len(toks) == 2 && toks[0].kind == tZeroOrMore && toks[0].lit == "" &&
		toks[1].kind == tLiteral {
		s := toks[1].lit
		return Strategy{Kind: StrategySuffix, Literal: s, Component: strings.HasPrefix(s, "/")}
	}

	if last := toks[len(toks)-1]; last.kind == tLiteral {
		if ext, ok := splitExt(last.lit); ok {
			return Strategy{Kind: StrategyRequiredExtension, Literal: ext}
		}
	}

	return Strategy{Kind: StrategyRegex}
}

func literalOf(toks []token) (bool, string) {
	var sb strings.Builder
	for _, t := range toks {
		if t.kind != tLiteral {
			return false, ""
		}
		sb.WriteString(t.lit)
	}
	return true, sb.String()
}
