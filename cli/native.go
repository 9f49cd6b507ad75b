package cli

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// nativeCloser adapts an in-process decoder plus the file(s) it wraps into
// a single io.ReadCloser.
type nativeCloser struct {
	r       io.Reader
	closers []io.Closer
}

func (n *nativeCloser) Read(p []byte) (int, error) { return n.r.Read(p) }

func (n *nativeCloser) Close() error {
	var first error
	for _, c := range n.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type zstdDecoderCloser struct{ d *zstd.Decoder }

func (z zstdDecoderCloser) Close() error {
	z.d.Close()
	return nil
}

// newNativeDecompressReader builds an in-process decoder for path, for the
// subset of formats klauspost/compress covers natively (gzip and zstd). It
// is used only as a fallback when the external decompression command a
// DecompressionMatcher would otherwise shell out to is unavailable.
func newNativeDecompressReader(path string) (*DecompressionReader, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz") || strings.HasSuffix(lower, ".tgz"):
		f, err := os.Open(path)
		if err != nil {
			return nil, false
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, false
		}
		return &DecompressionReader{
			native: &nativeCloser{r: gz, closers: []io.Closer{gz, f}},
		}, true
	case strings.HasSuffix(lower, ".zst") || strings.HasSuffix(lower, ".zstd"):
		f, err := os.Open(path)
		if err != nil {
			return nil, false
		}
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, false
		}
		return &DecompressionReader{
			native: &nativeCloser{r: zr, closers: []io.Closer{zstdDecoderCloser{zr}, f}},
		}, true
	default:
		return nil, false
	}
}
