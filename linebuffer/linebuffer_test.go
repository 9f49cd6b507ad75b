package linebuffer

import (
	"strings"
	"testing"
)

func newReader(s string) *strings.Reader { return strings.NewReader(s) }

func TestBufferBasics1(t *testing.T) {
	b := New(DefaultConfig())
	r := newReader("homer\nlisa\nmaggie")

	if len(b.Bytes()) != 0 {
		t.Fatalf("expected empty buffer initially")
	}

	ok, err := b.Fill(r)
	if err != nil || !ok {
		t.Fatalf("fill 1: ok=%v err=%v", ok, err)
	}
	if got := string(b.Bytes()); got != "homer\nlisa\n" {
		t.Fatalf("got %q", got)
	}
	if b.AbsoluteByteOffset() != 0 {
		t.Fatalf("offset = %d", b.AbsoluteByteOffset())
	}
	b.Consume(5)
	if b.AbsoluteByteOffset() != 5 {
		t.Fatalf("offset = %d", b.AbsoluteByteOffset())
	}
	b.ConsumeAll()
	if b.AbsoluteByteOffset() != 11 {
		t.Fatalf("offset = %d", b.AbsoluteByteOffset())
	}

	ok, err = b.Fill(r)
	if err != nil || !ok {
		t.Fatalf("fill 2: ok=%v err=%v", ok, err)
	}
	if got := string(b.Bytes()); got != "maggie" {
		t.Fatalf("got %q", got)
	}
	b.ConsumeAll()

	ok, err = b.Fill(r)
	if err != nil || ok {
		t.Fatalf("fill 3: ok=%v err=%v", ok, err)
	}
	if b.AbsoluteByteOffset() != 17 {
		t.Fatalf("offset = %d", b.AbsoluteByteOffset())
	}
	if _, has := b.BinaryByteOffset(); has {
		t.Fatalf("expected no binary offset")
	}
}

func TestBufferBasicsTrailingNewline(t *testing.T) {
	b := New(DefaultConfig())
	r := newReader("homer\nlisa\nmaggie\n")

	ok, err := b.Fill(r)
	if err != nil || !ok {
		t.Fatalf("fill: ok=%v err=%v", ok, err)
	}
	if got := string(b.Bytes()); got != "homer\nlisa\nmaggie\n" {
		t.Fatalf("got %q", got)
	}
	b.ConsumeAll()

	ok, _ = b.Fill(r)
	if ok {
		t.Fatalf("expected EOF")
	}
}

func TestBufferEmpty(t *testing.T) {
	b := New(DefaultConfig())
	ok, err := b.Fill(newReader(""))
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestBufferZeroCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0
	b := New(cfg)
	r := newReader("homer\nlisa\nmaggie")

	var got []byte
	for {
		ok, err := b.Fill(r)
		if err != nil {
			t.Fatalf("fill: %v", err)
		}
		got = append(got, b.Bytes()...)
		b.ConsumeAll()
		if !ok {
			break
		}
	}
	if string(got) != "homer\nlisa\nmaggie" {
		t.Fatalf("got %q", got)
	}
}

func TestBufferSmallCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 1
	b := New(cfg)
	r := newReader("homer\nlisa\nmaggie")

	var got []byte
	for {
		ok, err := b.Fill(r)
		if err != nil {
			t.Fatalf("fill: %v", err)
		}
		got = append(got, b.Bytes()...)
		b.ConsumeAll()
		if !ok {
			break
		}
	}
	if string(got) != "homer\nlisa\nmaggie" {
		t.Fatalf("got %q", got)
	}
}

func TestBufferLimitedCapacityError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 1
	cfg.Allocation = ErrorLimit(0)
	b := New(cfg)
	r := newReader("homer\nlisa\nmaggie")

	_, err := b.Fill(r)
	if err == nil {
		t.Fatalf("expected allocation limit error")
	}
	if _, ok := err.(*AllocationLimitError); !ok {
		t.Fatalf("wrong error type: %T", err)
	}
}

func TestBufferBinaryNone(t *testing.T) {
	b := New(DefaultConfig())
	r := newReader("homer\nli\x00sa\nmaggie\n")

	ok, err := b.Fill(r)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if got := string(b.Bytes()); got != "homer\nli\x00sa\nmaggie\n" {
		t.Fatalf("got %q", got)
	}
}

func TestBufferBinaryQuit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detection = Quit('\x00')
	b := New(cfg)
	r := newReader("homer\nli\x00sa\nmaggie\n")

	ok, err := b.Fill(r)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if got := string(b.Bytes()); got != "homer\nli" {
		t.Fatalf("got %q", got)
	}
	b.ConsumeAll()

	ok, _ = b.Fill(r)
	if ok {
		t.Fatalf("expected eof-like behavior on quit")
	}
	if off, has := b.BinaryByteOffset(); !has || off != 8 {
		t.Fatalf("binary offset = %d, %v", off, has)
	}
}

func TestBufferBinaryQuitAtStart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detection = Quit('\x00')
	b := New(cfg)
	r := newReader("\x00homer\nlisa\nmaggie\n")

	ok, _ := b.Fill(r)
	if ok {
		t.Fatalf("expected immediate stop")
	}
	if off, has := b.BinaryByteOffset(); !has || off != 0 {
		t.Fatalf("binary offset = %d, %v", off, has)
	}
}

func TestBufferBinaryConvert(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detection = Convert('\x00')
	b := New(cfg)
	r := newReader("homer\nli\x00sa\nmaggie\n")

	ok, err := b.Fill(r)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if got := string(b.Bytes()); got != "homer\nli\nsa\nmaggie\n" {
		t.Fatalf("got %q", got)
	}
	b.ConsumeAll()
	ok, _ = b.Fill(r)
	if ok {
		t.Fatalf("expected eof")
	}
	if off, has := b.BinaryByteOffset(); !has || off != 8 {
		t.Fatalf("binary offset = %d, %v", off, has)
	}
}

func TestReplaceBytes(t *testing.T) {
	cases := []struct {
		in, want string
		src      byte
		first    int
		found    bool
	}{
		{"", "", 'b', 0, false},
		{"a", "a", 'a', 0, false},
		{"abc", "azc", 'b', 1, true},
		{"abb", "azz", 'b', 1, true},
		{"aba", "zbz", 'a', 0, true},
		{"bbb", "zzz", 'b', 0, true},
		{"bac", "zac", 'b', 0, true},
	}
	for _, c := range cases {
		buf := []byte(c.in)
		first, found := replaceBytes(buf, c.src, 'z')
		if found != c.found {
			t.Fatalf("%q: found=%v want=%v", c.in, found, c.found)
		}
		if found && first != c.first {
			t.Fatalf("%q: first=%d want=%d", c.in, first, c.first)
		}
		if string(buf) != c.want {
			t.Fatalf("%q: got=%q want=%q", c.in, buf, c.want)
		}
	}
}
