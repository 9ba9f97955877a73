package codec

import (
	"bufio"
	"errors"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 compresses with the lz4 frame format. Level 0 maps to the fast
// compressor, 1-9 to lz4.Level1 through lz4.Level9.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

var lz4Levels = [10]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

func (LZ4) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		return nil, err
	}
	return zw, nil
}

// NewReader returns a reader that decodes concatenated lz4 frames. The lz4
// frame reader stops at the end of a single frame, so appended write
// sessions need an explicit frame-to-frame handoff.
func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	return &lz4MultiFrameReader{br: br, zr: lz4.NewReader(br)}, nil
}

type lz4MultiFrameReader struct {
	br *bufio.Reader
	zr *lz4.Reader
}

func (r *lz4MultiFrameReader) Read(p []byte) (int, error) {
	for {
		n, err := r.zr.Read(p)
		if !errors.Is(err, io.EOF) {
			return n, err
		}
		// Frame finished; check for another one.
		if _, peekErr := r.br.Peek(1); peekErr != nil {
			return n, io.EOF
		}
		r.zr.Reset(r.br)
		if n > 0 {
			return n, nil
		}
	}
}

func (r *lz4MultiFrameReader) Close() error { return nil }
