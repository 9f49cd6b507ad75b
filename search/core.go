package search

import (
	"io"

	"github.com/coregx/rg/lines"
)

// core drives one search from Sink.Begin through Sink.Finish. It implements
// the fast and slow line-matching paths, before/after context windows,
// passthru, lazy line counting, the match limit, and searcher-side binary
// detection for the slice path.
//
// A core is constructed fresh for every call to Searcher.SearchSlice or
// Searcher.SearchReader and is not reused.
type core struct {
	s    *Searcher
	m    Matcher
	sink Sink
	cfg  Config

	lineNumber      uint64
	lastLineCounted uint64 // absolute offset counted up to

	afterContextLeft int
	hasMatched       bool
	lastEmittedEnd   int64 // absolute offset, -1 meaning nothing emitted yet

	matchCount   uint64
	limitReached bool

	hasBinaryOffset bool
	binaryOffset    uint64
}

func newCore(s *Searcher, m Matcher, sink Sink) *core {
	return &core{s: s, m: m, sink: sink, cfg: s.cfg, lastEmittedEnd: -1}
}

func (c *core) hasContext() bool {
	return c.cfg.BeforeContext > 0 || c.cfg.AfterContext > 0
}

// fastPathEligible reports whether the candidate-line fast path may be used
// for the current configuration and matcher declarations.
func (c *core) fastPathEligible() bool {
	if c.cfg.Passthru || c.cfg.InvertMatch || c.cfg.MultiLine {
		return false
	}
	term := c.cfg.LineTerminator
	if term == 0 {
		return false
	}
	if mt, ok := c.m.LineTerminator(); ok && mt == term {
		return true
	}
	if nb := c.m.NonMatchingBytes(); nb != nil && nb.Contains(term) {
		return true
	}
	return false
}

// unit describes one discovered piece of work: either a single line or, in
// multi-line mode, the full span of lines a match falls within.
type unit struct {
	rng    lines.Range
	isHit  bool
	ranges []Range
}

// runSlice searches all of data in one pass, with no incremental buffer.
func (c *core) runSlice(data []byte) error {
	data = c.detectBinarySlice(data)

	keepGoing, err := c.sink.Begin(c.s)
	if err != nil || !keepGoing {
		return c.finish(err, 0)
	}
	if c.hasBinaryOffset {
		keepGoing, err = c.sink.BinaryData(c.s, int(c.binaryOffset))
		if err != nil || !keepGoing {
			return c.finish(err, uint64(len(data)))
		}
	}

	pos := 0
	for pos < len(data) {
		u, uerr := c.next(data, pos)
		if uerr != nil {
			return c.finish(uerr, uint64(len(data)))
		}
		if u.rng.Len() == 0 {
			break
		}
		keepGoing, err = c.emit(data, u, 0)
		if err != nil || !keepGoing {
			return c.finish(err, uint64(u.rng.End))
		}
		pos = u.rng.End
		if c.limitReached && c.afterContextLeft == 0 {
			break
		}
	}
	return c.finish(nil, uint64(len(data)))
}

// runReader searches r incrementally via the Searcher's line buffer,
// rolling the buffer forward as lines are consumed while retaining enough
// trailing data to serve any future before-context window.
func (c *core) runReader(r io.Reader) error {
	buf := c.s.buf

	keepGoing, err := c.sink.Begin(c.s)
	if err != nil || !keepGoing {
		return c.finish(err, 0)
	}

	var absBase uint64
	pos := 0
	more, ferr := buf.Fill(r)
	if ferr != nil {
		return c.finish(ferr, absBase)
	}

	for {
		view := buf.Bytes()
		if pos >= len(view) {
			if !more {
				break
			}
			discard := lines.PrecedingByPos(view, pos, c.cfg.LineTerminator, c.cfg.BeforeContext)
			buf.Consume(discard)
			absBase += uint64(discard)
			pos -= discard
			more, ferr = buf.Fill(r)
			if ferr != nil {
				return c.finish(ferr, absBase+uint64(len(view)))
			}
			if off, ok := buf.BinaryByteOffset(); ok && !c.hasBinaryOffset {
				c.hasBinaryOffset = true
				c.binaryOffset = off
				keepGoing, err = c.sink.BinaryData(c.s, int(c.binaryOffset))
				if err != nil || !keepGoing {
					return c.finish(err, absBase)
				}
			}
			continue
		}

		u, uerr := c.next(view, pos)
		if uerr != nil {
			return c.finish(uerr, absBase+uint64(len(view)))
		}
		if u.rng.Len() == 0 {
			if !more {
				break
			}
			pos = len(view)
			continue
		}
		keepGoing, err = c.emit(view, u, absBase)
		byteCount := absBase + uint64(u.rng.End)
		if err != nil || !keepGoing {
			return c.finish(err, byteCount)
		}
		pos = u.rng.End
		if c.limitReached && c.afterContextLeft == 0 {
			break
		}
	}
	return c.finish(nil, absBase+uint64(pos))
}

// next discovers the next unit of work starting at pos within view, using
// whichever of the fast, slow, or multi-line strategies applies.
func (c *core) next(view []byte, pos int) (unit, error) {
	switch {
	case c.cfg.MultiLine:
		return c.nextMultiLine(view, pos)
	case !c.limitReached && c.fastPathEligible():
		return c.nextFast(view, pos)
	default:
		return c.nextSlow(view, pos)
	}
}

func (c *core) nextSlow(view []byte, pos int) (unit, error) {
	step := lines.NewStep(c.cfg.LineTerminator, pos, len(view))
	rng, ok := step.Next(view)
	if !ok {
		return unit{}, nil
	}
	if c.limitReached {
		return unit{rng: rng}, nil
	}
	line := lines.WithoutTerminator(view[rng.Start:rng.End], []byte{c.cfg.LineTerminator})
	hit, err := c.m.ShortestMatch(line, 0)
	if err != nil {
		return unit{}, err
	}
	hit = hit != c.cfg.InvertMatch
	if !hit {
		return unit{rng: rng}, nil
	}
	var ranges []Range
	if !c.cfg.InvertMatch {
		ranges, err = collectMatchRanges(c.m, line)
		if err != nil {
			return unit{}, err
		}
	}
	return unit{rng: rng, isHit: true, ranges: ranges}, nil
}

func (c *core) nextFast(view []byte, pos int) (unit, error) {
	lm, err := c.m.FindCandidateLine(view, pos)
	if err != nil {
		return unit{}, err
	}
	if lm.Kind == LineMatchNone {
		return c.nextSlowForced(view, pos)
	}
	rng := lines.Locate(view, c.cfg.LineTerminator, lines.Range{Start: lm.Offset, End: lm.Offset})
	line := lines.WithoutTerminator(view[rng.Start:rng.End], []byte{c.cfg.LineTerminator})
	if lm.Kind == LineMatchCandidate {
		verified, err := c.m.IsMatch(line, 0)
		if err != nil {
			return unit{}, err
		}
		if !verified {
			return unit{rng: rng}, nil
		}
	}
	ranges, err := collectMatchRanges(c.m, line)
	if err != nil {
		return unit{}, err
	}
	return unit{rng: rng, isHit: true, ranges: ranges}, nil
}

// nextSlowForced extracts the next single line as a definite miss, used
// once the fast path's candidate search reports no further candidates in
// the current view, so remaining lines still flow through context and
// line-numbering bookkeeping one at a time.
func (c *core) nextSlowForced(view []byte, pos int) (unit, error) {
	step := lines.NewStep(c.cfg.LineTerminator, pos, len(view))
	rng, ok := step.Next(view)
	if !ok {
		return unit{}, nil
	}
	return unit{rng: rng}, nil
}

func (c *core) nextMultiLine(view []byte, pos int) (unit, error) {
	match, err := c.m.Find(view, pos)
	if err != nil {
		return unit{}, err
	}
	if match == nil {
		return c.nextSlowForced(view, pos)
	}
	matchRng := lines.Locate(view, c.cfg.LineTerminator, lines.Range{Start: match.Start(), End: match.End()})
	if matchRng.Start > pos {
		step := lines.NewStep(c.cfg.LineTerminator, pos, matchRng.Start)
		rng, ok := step.Next(view)
		if !ok {
			return unit{}, nil
		}
		return unit{rng: rng}, nil
	}
	if c.limitReached {
		return unit{rng: matchRng}, nil
	}
	ranges := []Range{{Start: match.Start() - matchRng.Start, End: match.End() - matchRng.Start}}
	return unit{rng: matchRng, isHit: true, ranges: ranges}, nil
}

// collectMatchRanges finds every non-overlapping submatch within line, used
// to report column markers for a matched (non-inverted) line.
func collectMatchRanges(m Matcher, line []byte) ([]Range, error) {
	var ranges []Range
	at := 0
	for at <= len(line) {
		match, err := m.Find(line, at)
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		ranges = append(ranges, Range{Start: match.Start(), End: match.End()})
		if match.End() == match.Start() {
			at = match.End() + 1
		} else {
			at = match.End()
		}
	}
	return ranges, nil
}

// emit dispatches one discovered unit to the sink, handling before-context
// lookback, context breaks, the after-context window, passthru, and
// stop_on_nonmatch.
func (c *core) emit(view []byte, u unit, absBase uint64) (bool, error) {
	if u.isHit && !c.limitReached {
		keepGoing, err := c.emitBeforeContext(view, u.rng.Start, absBase)
		if err != nil || !keepGoing {
			return keepGoing, err
		}
		lineBytes := view[u.rng.Start:u.rng.End]
		abs := absBase + uint64(u.rng.Start)
		if err := c.maybeBreak(abs); err != nil {
			return false, err
		}
		match := &SinkMatch{
			Bytes:              lineBytes,
			AbsoluteByteOffset: abs,
			Ranges:             u.ranges,
		}
		if c.cfg.LineNumber {
			match.LineNumber = c.lineNumberAt(view, absBase, abs)
		}
		keepGoing, err = c.sink.Matched(c.s, match)
		c.lastEmittedEnd = int64(abs) + int64(len(lineBytes))
		if err != nil || !keepGoing {
			return keepGoing, err
		}
		c.matchCount++
		c.hasMatched = true
		c.afterContextLeft = c.cfg.AfterContext
		if c.cfg.MaxMatches != nil && c.matchCount >= *c.cfg.MaxMatches {
			c.limitReached = true
		}
		return true, nil
	}

	lineBytes := view[u.rng.Start:u.rng.End]
	abs := absBase + uint64(u.rng.Start)
	c.advanceLineCounterPast(view, absBase, abs+uint64(len(lineBytes)))

	if c.cfg.Passthru {
		return c.emitContextLine(view, absBase, lineBytes, abs, SinkContextOther)
	}
	if c.afterContextLeft > 0 {
		c.afterContextLeft--
		return c.emitContextLine(view, absBase, lineBytes, abs, SinkContextAfter)
	}
	if c.cfg.StopOnNonmatch && c.hasMatched {
		return false, nil
	}
	return true, nil
}

func (c *core) emitBeforeContext(view []byte, matchLineStart int, absBase uint64) (bool, error) {
	if c.cfg.BeforeContext == 0 {
		return true, nil
	}
	start := lines.PrecedingByPos(view, matchLineStart, c.cfg.LineTerminator, c.cfg.BeforeContext)
	step := lines.NewStep(c.cfg.LineTerminator, start, matchLineStart)
	for {
		rng, ok := step.Next(view)
		if !ok {
			return true, nil
		}
		abs := absBase + uint64(rng.Start)
		keepGoing, err := c.emitContextLine(view, absBase, view[rng.Start:rng.End], abs, SinkContextBefore)
		if err != nil || !keepGoing {
			return keepGoing, err
		}
	}
}

func (c *core) emitContextLine(view []byte, viewBase uint64, lineBytes []byte, abs uint64, kind SinkContextKind) (bool, error) {
	if err := c.maybeBreak(abs); err != nil {
		return false, err
	}
	ctx := &SinkContext{
		Bytes:              lineBytes,
		AbsoluteByteOffset: abs,
		Kind:               kind,
	}
	if c.cfg.LineNumber {
		ctx.LineNumber = c.lineNumberAt(view, viewBase, abs)
	}
	keepGoing, err := c.sink.Context(c.s, ctx)
	c.lastEmittedEnd = int64(abs) + int64(len(lineBytes))
	return keepGoing, err
}

// maybeBreak emits a context_break event if this line's start does not
// immediately follow the last line this core emitted, and any context is
// configured.
func (c *core) maybeBreak(abs uint64) error {
	if !c.hasContext() {
		return nil
	}
	if c.lastEmittedEnd < 0 || uint64(c.lastEmittedEnd) == abs {
		return nil
	}
	keepGoing, err := c.sink.ContextBreak(c.s)
	if err != nil {
		return err
	}
	if !keepGoing {
		return errStoppedEarly
	}
	return nil
}

// lineNumberAt returns the 1-based line number of the line starting at the
// absolute offset abs, lazily counting any terminators since the last
// position counted.
func (c *core) lineNumberAt(view []byte, viewBase uint64, abs uint64) uint64 {
	c.advanceLineCounterPast(view, viewBase, abs)
	return c.lineNumber + 1
}

// advanceLineCounterPast brings the lazy line counter up to date through
// absolute offset abs, by counting terminators in view over the span
// [lastLineCounted, abs). The core always calls this before abs's line
// could roll out of the incremental buffer, so that span is guaranteed to
// still be addressable within view.
func (c *core) advanceLineCounterPast(view []byte, viewBase uint64, abs uint64) {
	if !c.cfg.LineNumber || abs <= c.lastLineCounted {
		return
	}
	relStart := int(c.lastLineCounted - viewBase)
	if relStart < 0 {
		relStart = 0
	}
	relEnd := int(abs - viewBase)
	if relEnd > len(view) {
		relEnd = len(view)
	}
	if relEnd > relStart {
		c.lineNumber += lines.Count(view[relStart:relEnd], c.cfg.LineTerminator)
	}
	c.lastLineCounted = abs
}

func (c *core) finish(err error, byteCount uint64) error {
	ferr := c.sink.Finish(c.s, &SinkFinish{
		ByteCount:        byteCount,
		BinaryByteOffset: c.binaryOffset,
		HasBinaryOffset:  c.hasBinaryOffset,
	})
	if err != nil {
		if err == errStoppedEarly {
			return ferr
		}
		return err
	}
	return ferr
}

// detectBinarySlice applies the configured binary-detection policy to an
// in-memory slice up front, since there is no incremental line buffer to
// interleave the check into. Quit truncates the data at the first
// occurrence; Convert rewrites a private copy.
func (c *core) detectBinarySlice(data []byte) []byte {
	det := c.cfg.BinaryDetection.det
	if det.IsNone() {
		return data
	}
	idx := indexByte(data, det.Byte())
	if idx < 0 {
		return data
	}
	c.hasBinaryOffset = true
	c.binaryOffset = uint64(idx)
	if det.IsQuit() {
		return data[:idx]
	}
	converted := make([]byte, len(data))
	copy(converted, data)
	for i, b := range converted {
		if b == det.Byte() {
			converted[i] = c.cfg.LineTerminator
		}
	}
	return converted
}

func indexByte(buf []byte, b byte) int {
	for i, x := range buf {
		if x == b {
			return i
		}
	}
	return -1
}
