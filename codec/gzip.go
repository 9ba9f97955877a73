package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip compresses with the gzip format. Level 0 stores data uncompressed
// (still inside gzip framing), 1 is fastest, 9 is smallest.
//
// The reader operates in multistream mode, so files built from several
// append sessions (one gzip member per session) decode as one stream.
type Gzip struct{}

func (Gzip) Name() string { return "gzip" }

func (Gzip) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	return gzip.NewWriterLevel(w, level)
}

func (Gzip) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}
