package vecfile

import (
	"sync/atomic"

	"github.com/hupe1980/vecfile/codec"
)

type options struct {
	codec            codec.Codec
	compressionLevel int
	logger           *Logger
	sizeCounter      *atomic.Uint64
}

// Option configures Store construction.
type Option func(*options)

// WithCodec configures the compression codec for the vector artifact.
// If nil is passed, codec.Default (gzip) is used. An artifact must be read
// with the codec it was written with; the store does not record the codec
// on disk.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompressionLevel sets the compression level on the gzip 0-9 scale:
// 0 disables compression inside the stream, 1 is fastest, 9 is smallest.
// The default is 1. The value is passed through to the codec, which rejects
// out-of-range levels when the write session opens.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.compressionLevel = level
	}
}

// WithLogger configures the diagnostic logging sink. Load-time failures are
// reported here rather than as errors, so a silent store should use
// NoopLogger explicitly.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithSizeCounter attaches an externally owned running total. The store
// adds each appended batch's row count to it, letting an enclosing executor
// track size across multiple stores.
func WithSizeCounter(counter *atomic.Uint64) Option {
	return func(o *options) {
		o.sizeCounter = counter
	}
}
