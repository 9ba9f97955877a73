// Package codec centralizes the stream compression backends used for
// persisted vector data.
//
// Codec selection is a breaking-change boundary: bytes written with one
// codec can only be read back with the same codec. The codec is not recorded
// in the artifact itself; callers own that piece of schema, the same way
// they own dimension and element type.
package codec

import (
	"fmt"
	"io"
)

// Codec produces compressing writers and decompressing readers over a
// byte stream.
//
// Writers from successive write sessions append independent compressed
// streams to the same file; readers must decode such concatenated streams
// transparently. All built-in codecs do.
type Codec interface {
	// Name returns the stable codec name used for lookup via ByName.
	Name() string

	// NewWriter wraps w with a compressing writer. The level is on the
	// gzip 0-9 scale; codecs with a different native scale map it.
	// Closing the returned writer flushes the stream but does not close w.
	NewWriter(w io.Writer, level int) (io.WriteCloser, error)

	// NewReader wraps r with a decompressing reader.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Default is the codec used when none is configured. Gzip keeps artifacts
// readable by standard gzip tooling and supports the full 0-9 level range.
var Default Codec = Gzip{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "gzip":
		return Gzip{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	case "raw":
		return Raw{}, true
	default:
		return nil, false
	}
}

func validateLevel(level int) error {
	if level < 0 || level > 9 {
		return fmt.Errorf("codec: compression level %d out of range [0, 9]", level)
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
