package codec

import "io"

// Raw performs no compression: writers and readers pass bytes through
// untouched. A raw artifact is plain row-major vector data, which makes it
// eligible for the memory-mapped load path.
type Raw struct{}

func (Raw) Name() string { return "raw" }

func (Raw) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	return nopWriteCloser{w}, nil
}

func (Raw) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}
