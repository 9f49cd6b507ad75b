package lines

import "testing"

const sherlock = "For the Doctor Watsons of this world, as opposed to the Sherlock\n" +
	"Holmeses, success in the province of detective work must always\n" +
	"be, to a very large extent, the result of luck. Sherlock Holmes\n" +
	"can extract a clew from a wisp of straw or a flake of cigar ash;\n" +
	"but Doctor Watson has to have it taken out for him and dusted,\n" +
	"and exhibited clearly, with a label attached."

func collectLines(text string) []string {
	var out []string
	it := NewIter('\n', []byte(text))
	for {
		l := it.Next()
		if l == nil {
			break
		}
		out = append(out, string(l))
	}
	return out
}

func lineRanges(text string) []Range {
	var out []Range
	step := NewStep('\n', 0, len(text))
	for {
		r, ok := step.Next([]byte(text))
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out
}

func TestLineCount(t *testing.T) {
	cases := []struct {
		s    string
		want uint64
	}{
		{"", 0}, {"\n", 1}, {"\n\n", 2}, {"a\nb\nc", 2},
	}
	for _, c := range cases {
		if got := Count([]byte(c.s), '\n'); got != c.want {
			t.Fatalf("%q: got %d want %d", c.s, got, c.want)
		}
	}
}

func TestLineIter(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"abc", []string{"abc"}},
		{"abc\n", []string{"abc\n"}},
		{"abc\nxyz", []string{"abc\n", "xyz"}},
		{"abc\nxyz\n", []string{"abc\n", "xyz\n"}},
		{"abc\n\n", []string{"abc\n", "\n"}},
		{"abc\n\n\n", []string{"abc\n", "\n", "\n"}},
		{"abc\n\nxyz", []string{"abc\n", "\n", "xyz"}},
		{"abc\n\nxyz\n", []string{"abc\n", "\n", "xyz\n"}},
		{"abc\nxyz\n\n", []string{"abc\n", "xyz\n", "\n"}},
		{"\n", []string{"\n"}},
		{"", nil},
	}
	for _, c := range cases {
		got := collectLines(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q: got %v want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q: got %v want %v", c.in, got, c.want)
			}
		}
	}
}

func TestLineIterEmptyRange(t *testing.T) {
	step := NewStep('\n', 0, 0)
	if _, ok := step.Next([]byte("abc")); ok {
		t.Fatalf("expected no line from an empty range")
	}
}

func TestLocateWeird(t *testing.T) {
	cases := []struct {
		s          string
		start, end int
		want       Range
	}{
		{"", 0, 0, Range{0, 0}},
		{"\n", 0, 1, Range{0, 1}},
		{"\n", 1, 1, Range{1, 1}},
		{"\n\n", 0, 0, Range{0, 1}},
		{"\n\n", 0, 1, Range{0, 1}},
		{"\n\n", 1, 1, Range{1, 2}},
		{"\n\n", 1, 2, Range{1, 2}},
		{"\n\n", 2, 2, Range{2, 2}},
		{"a\nb\nc", 0, 1, Range{0, 2}},
		{"a\nb\nc", 1, 2, Range{0, 2}},
		{"a\nb\nc", 2, 3, Range{2, 4}},
		{"a\nb\nc", 3, 4, Range{2, 4}},
		{"a\nb\nc", 4, 5, Range{4, 5}},
		{"a\nb\nc", 5, 5, Range{4, 5}},
	}
	for _, c := range cases {
		got := Locate([]byte(c.s), '\n', Range{c.start, c.end})
		if got != c.want {
			t.Fatalf("locate(%q,%d,%d) = %v want %v", c.s, c.start, c.end, got, c.want)
		}
	}
}

func TestLocateSherlock(t *testing.T) {
	ranges := lineRanges(sherlock)
	loc := func(start, end int) Range { return Locate([]byte(sherlock), '\n', Range{start, end}) }

	if got := loc(ranges[0].Start, ranges[0].End); got != ranges[0] {
		t.Fatalf("got %v want %v", got, ranges[0])
	}
	if got := loc(ranges[0].Start+1, ranges[0].End); got != ranges[0] {
		t.Fatalf("got %v want %v", got, ranges[0])
	}
	if got := loc(ranges[0].End-1, ranges[0].End); got != ranges[0] {
		t.Fatalf("got %v want %v", got, ranges[0])
	}
	if got := loc(ranges[0].End, ranges[0].End); got != ranges[1] {
		t.Fatalf("got %v want %v", got, ranges[1])
	}
}

func TestPrecedingDoc(t *testing.T) {
	bytes := []byte("abc\nxyz\n")
	if got := PrecedingByPos(bytes, 7, '\n', 0); got != 4 {
		t.Fatalf("got %d want 4", got)
	}
	if got := PrecedingByPos(bytes, 8, '\n', 0); got != 4 {
		t.Fatalf("got %d want 4", got)
	}
	if got := PrecedingByPos(bytes, 7, '\n', 1); got != 0 {
		t.Fatalf("got %d want 0", got)
	}
	if got := PrecedingByPos(bytes, 8, '\n', 1); got != 0 {
		t.Fatalf("got %d want 0", got)
	}
}

func TestPrecedingSherlock(t *testing.T) {
	ranges := lineRanges(sherlock)
	prev := func(pos, count int) int { return PrecedingByPos([]byte(sherlock), pos, '\n', count) }

	if got := prev(0, 0); got != 0 {
		t.Fatalf("got %d", got)
	}
	if got := prev(ranges[0].End-1, 0); got != 0 {
		t.Fatalf("got %d", got)
	}
	if got := prev(ranges[0].End, 0); got != ranges[0].Start {
		t.Fatalf("got %d want %d", got, ranges[0].Start)
	}
	if got := prev(ranges[0].End+1, 0); got != ranges[1].Start {
		t.Fatalf("got %d want %d", got, ranges[1].Start)
	}
	if got := prev(ranges[4].End-1, 1); got != ranges[3].Start {
		t.Fatalf("got %d want %d", got, ranges[3].Start)
	}
	if got := prev(ranges[5].End, 5); got != ranges[0].Start {
		t.Fatalf("got %d want %d", got, ranges[0].Start)
	}
}

func TestPrecedingShort(t *testing.T) {
	text := "a\nb\nc\nd\ne\nf\n"
	ranges := lineRanges(text)
	prev := func(pos, count int) int { return PrecedingByPos([]byte(text), pos, '\n', count) }

	if len(text) != 12 {
		t.Fatalf("len = %d", len(text))
	}
	wants := []int{5, 4, 3, 2, 1, 0, 0}
	for count, want := range wants {
		if got := prev(ranges[5].End, count); got != ranges[want].Start {
			t.Fatalf("count=%d got %d want %d", count, got, ranges[want].Start)
		}
	}
}
