package printer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/coregx/rg/search"
)

func decodeLines(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var envs []map[string]interface{}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		var env map[string]interface{}
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			t.Fatalf("Unmarshal %q: %v", line, err)
		}
		envs = append(envs, env)
	}
	return envs
}

func TestJSONDeferredBeginOnlyWrittenOnEvent(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSON(JSONConfig{}, &buf, "file.txt")

	if _, err := j.Begin(nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := j.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for a haystack with no events, got %q", buf.String())
	}
}

func TestJSONMatchEnvelope(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSON(JSONConfig{}, &buf, "file.txt")

	m := &search.SinkMatch{
		Bytes:              []byte("hello needle\n"),
		AbsoluteByteOffset: 10,
		LineNumber:         2,
		Ranges:             []search.Range{{Start: 6, End: 12}},
	}
	if _, err := j.Matched(nil, m); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if err := j.Finish(nil, &search.SinkFinish{ByteCount: 13}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	envs := decodeLines(t, buf.String())
	if len(envs) != 3 {
		t.Fatalf("expected begin+match+end envelopes, got %d: %v", len(envs), envs)
	}
	if envs[0]["type"] != "begin" {
		t.Fatalf("expected first envelope to be begin, got %v", envs[0]["type"])
	}
	if envs[1]["type"] != "match" {
		t.Fatalf("expected second envelope to be match, got %v", envs[1]["type"])
	}
	data := envs[1]["data"].(map[string]interface{})
	if data["absolute_offset"].(float64) != 10 {
		t.Fatalf("unexpected absolute_offset: %v", data["absolute_offset"])
	}
	subs := data["submatches"].([]interface{})
	if len(subs) != 1 {
		t.Fatalf("expected one submatch, got %d", len(subs))
	}
	if envs[2]["type"] != "end" {
		t.Fatalf("expected third envelope to be end, got %v", envs[2]["type"])
	}
}

func TestJSONArbitraryDataBase64ForInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSON(JSONConfig{}, &buf, "")

	invalid := []byte{0xff, 0xfe, 'x'}
	m := &search.SinkMatch{
		Bytes:  invalid,
		Ranges: []search.Range{{Start: 0, End: 1}},
	}
	if _, err := j.Matched(nil, m); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if err := j.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	envs := decodeLines(t, buf.String())
	var match map[string]interface{}
	for _, e := range envs {
		if e["type"] == "match" {
			match = e["data"].(map[string]interface{})
		}
	}
	if match == nil {
		t.Fatalf("expected a match envelope")
	}
	lines := match["lines"].(map[string]interface{})
	b64, ok := lines["bytes"].(string)
	if !ok {
		t.Fatalf("expected non-UTF8 bytes to be base64-encoded, got %v", lines)
	}
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	if !bytes.Equal(decoded, invalid) {
		t.Fatalf("round-tripped bytes mismatch: got %v want %v", decoded, invalid)
	}
}

func TestJSONAlwaysBeginEnd(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSON(JSONConfig{AlwaysBeginEnd: true}, &buf, "")
	if _, err := j.Begin(nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := j.Finish(nil, &search.SinkFinish{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	envs := decodeLines(t, buf.String())
	if len(envs) != 2 {
		t.Fatalf("expected begin+end even with no matches, got %d", len(envs))
	}
}

func TestJSONStats(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSON(JSONConfig{}, &buf, "")
	m := &search.SinkMatch{Bytes: []byte("x\n"), Ranges: []search.Range{{Start: 0, End: 1}}}
	if _, err := j.Matched(nil, m); err != nil {
		t.Fatalf("Matched: %v", err)
	}
	if err := j.Finish(nil, &search.SinkFinish{ByteCount: 2}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	stats := j.Stats()
	if stats.Matches != 1 || stats.SearchesWithMatch != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
