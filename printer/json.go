package printer

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"time"
	"unicode/utf8"

	"github.com/coregx/rg/search"
)

// JSONConfig holds the tunables of the JSON-Lines printer (spec.md §4.9).
type JSONConfig struct {
	// AlwaysBeginEnd, when false, suppresses the begin/end envelopes for a
	// haystack that produced no match/context events.
	AlwaysBeginEnd bool

	// Pretty indents each envelope; this breaks the one-JSON-value-per-
	// line guarantee and is meant for interactive debugging only.
	Pretty bool

	// Replacement, if non-nil, is interpolated in place of every match
	// and reported via each submatch's "replacement" field.
	Replacement []byte
}

// arbitraryData is the {"text": ...} / {"bytes": ...} envelope used
// whenever raw bytes of unknown validity must cross into JSON.
type arbitraryData struct {
	Text  *string `json:"text,omitempty"`
	Bytes *string `json:"bytes,omitempty"`
}

func newArbitraryData(b []byte) arbitraryData {
	if utf8.Valid(b) {
		s := string(b)
		return arbitraryData{Text: &s}
	}
	s := base64.StdEncoding.EncodeToString(b)
	return arbitraryData{Bytes: &s}
}

type jsonSubmatch struct {
	Match       arbitraryData  `json:"match"`
	Start       int            `json:"start"`
	End         int            `json:"end"`
	Replacement *arbitraryData `json:"replacement,omitempty"`
}

type jsonDuration struct {
	Secs  int64  `json:"secs"`
	Nanos int64  `json:"nanos"`
	Human string `json:"human"`
}

type jsonStats struct {
	Elapsed           jsonDuration `json:"elapsed"`
	Searches          uint64       `json:"searches"`
	SearchesWithMatch uint64       `json:"searches_with_match"`
	BytesSearched     uint64       `json:"bytes_searched"`
	BytesPrinted      uint64       `json:"bytes_printed"`
	MatchedLines      uint64       `json:"matched_lines"`
	Matches           uint64       `json:"matches"`
}

func newJSONStats(st search.Stats) jsonStats {
	return jsonStats{
		Elapsed: jsonDuration{
			Secs:  int64(st.Elapsed / time.Second),
			Nanos: int64(st.Elapsed % time.Second),
			Human: NiceDuration(st.Elapsed).String(),
		},
		Searches:          st.Searches,
		SearchesWithMatch: st.SearchesWithMatch,
		BytesSearched:     st.BytesSearched,
		BytesPrinted:      st.BytesPrinted,
		MatchedLines:      st.MatchedLines,
		Matches:           st.Matches,
	}
}

type jsonBeginData struct {
	Path *arbitraryData `json:"path"`
}

type jsonEndData struct {
	Path         *arbitraryData `json:"path"`
	BinaryOffset *uint64        `json:"binary_offset"`
	Stats        jsonStats      `json:"stats"`
}

type jsonMatchData struct {
	Path            *arbitraryData `json:"path"`
	Lines           arbitraryData  `json:"lines"`
	LineNumber      *uint64        `json:"line_number"`
	AbsoluteOffset  uint64         `json:"absolute_offset"`
	Submatches      []jsonSubmatch `json:"submatches"`
}

type jsonEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// JSON is a search.Sink emitting the envelope stream documented in
// spec.md §4.9: one JSON object per line, tagged begin/match/context/end.
type JSON struct {
	cfg      JSONConfig
	w        *CounterWriter
	path     *arbitraryData
	enc      *json.Encoder
	any      bool
	matched  bool
	stats    search.Stats
	replacer *Replacer
}

// NewJSON returns a JSON printer writing to w. path may be empty when the
// haystack has no associated file path.
func NewJSON(cfg JSONConfig, w io.Writer, path string) *JSON {
	j := &JSON{cfg: cfg, w: NewCounterWriter(w), replacer: NewReplacer()}
	if path != "" {
		d := newArbitraryData([]byte(path))
		j.path = &d
	}
	enc := json.NewEncoder(j.w)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	j.enc = enc
	return j
}

// Stats returns the accumulated statistics for this printer's search.
func (j *JSON) Stats() search.Stats { return j.stats }

func (j *JSON) write(kind string, data interface{}) error {
	return j.enc.Encode(jsonEnvelope{Type: kind, Data: data})
}

func (j *JSON) Begin(*search.Searcher) (bool, error) {
	if !j.cfg.AlwaysBeginEnd {
		// Deferred: only written once an event actually occurs. See Matched/
		// Context, which call writeBeginIfNeeded.
		return true, nil
	}
	j.any = true
	return true, j.write("begin", jsonBeginData{Path: j.path})
}

func (j *JSON) writeBeginIfNeeded() error {
	if j.any {
		return nil
	}
	j.any = true
	return j.write("begin", jsonBeginData{Path: j.path})
}

func (j *JSON) Matched(sr *search.Searcher, m *search.SinkMatch) (bool, error) {
	if err := j.writeBeginIfNeeded(); err != nil {
		return false, err
	}
	j.matched = true
	j.stats.Matches += uint64(max1(len(m.Ranges)))
	j.stats.MatchedLines++
	var lnPtr *uint64
	if sr.LineNumber() {
		ln := m.LineNumber
		lnPtr = &ln
	}
	subs := j.buildSubmatches(m.Bytes, m.Ranges)
	data := jsonMatchData{
		Path:           j.path,
		Lines:          newArbitraryData(m.Bytes),
		LineNumber:     lnPtr,
		AbsoluteOffset: m.AbsoluteByteOffset,
		Submatches:     subs,
	}
	return true, j.write("match", data)
}

func (j *JSON) Context(sr *search.Searcher, c *search.SinkContext) (bool, error) {
	if err := j.writeBeginIfNeeded(); err != nil {
		return false, err
	}
	var lnPtr *uint64
	if sr.LineNumber() {
		ln := c.LineNumber
		lnPtr = &ln
	}
	data := jsonMatchData{
		Path:           j.path,
		Lines:          newArbitraryData(c.Bytes),
		LineNumber:     lnPtr,
		AbsoluteOffset: c.AbsoluteByteOffset,
		Submatches:     []jsonSubmatch{},
	}
	return true, j.write("context", data)
}

func (j *JSON) ContextBreak(*search.Searcher) (bool, error) { return true, nil }

func (j *JSON) BinaryData(*search.Searcher, int) (bool, error) { return true, nil }

func (j *JSON) Finish(_ *search.Searcher, f *search.SinkFinish) error {
	j.stats.BytesSearched += f.ByteCount
	j.stats.Searches++
	if j.matched {
		j.stats.SearchesWithMatch++
	}
	j.stats.BytesPrinted = j.w.TotalCount()
	if !j.cfg.AlwaysBeginEnd && !j.any {
		return nil
	}
	var off *uint64
	if f.HasBinaryOffset {
		o := f.BinaryByteOffset
		off = &o
	}
	return j.write("end", jsonEndData{
		Path:         j.path,
		BinaryOffset: off,
		Stats:        newJSONStats(j.stats),
	})
}

func (j *JSON) buildSubmatches(lineBytes []byte, ranges []search.Range) []jsonSubmatch {
	out := make([]jsonSubmatch, 0, len(ranges))
	if j.cfg.Replacement != nil && len(ranges) > 0 {
		rng := search.Range{Start: 0, End: len(lineBytes)}
		j.replacer.ReplaceAll(lineBytes, rng, '\n', j.cfg.Replacement, func(haystack []byte, at int, f func(int, int) bool) {
			for _, r := range ranges {
				if r.Start < at {
					continue
				}
				if !f(r.Start, r.End) {
					break
				}
			}
		})
	}
	repDst, repMatches, hasRep := j.replacer.Replacement()
	for i, r := range ranges {
		sub := jsonSubmatch{
			Match: newArbitraryData(lineBytes[r.Start:r.End]),
			Start: r.Start,
			End:   r.End,
		}
		if hasRep && i < len(repMatches) {
			rm := repMatches[i]
			rd := newArbitraryData(repDst[rm.Start:rm.End])
			sub.Replacement = &rd
		}
		out = append(out, sub)
	}
	return out
}
