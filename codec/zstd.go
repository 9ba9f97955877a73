package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses with the zstandard format. The 0-9 level is interpreted
// on the zstd scale via EncoderLevelFromZstd, which buckets it into the
// encoder speed tiers. Concatenated frames from multiple write sessions
// decode transparently.
type Zstd struct{}

func (Zstd) Name() string { return "zstd" }

func (Zstd) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}

func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
