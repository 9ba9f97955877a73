// Package array provides typed, fixed-shape numeric arrays backed by raw
// native-order bytes.
//
// An Array pairs a scalar element type with a shape and a contiguous
// row-major byte buffer. It is the unit of exchange between the vector store
// (which persists raw bytes) and consumers that need typed views
// (search indexes, key tables).
//
// # Byte layout
//
// Element bytes are stored in native byte order. Reinterpretation between
// []T and []byte uses unsafe.Slice with runtime alignment checks; unaligned
// buffers (e.g. read from an arbitrary io.Reader) fall back to an aligned
// copy rather than failing.
//
// # Platform requirements
//
// Little-endian systems only (native on amd64 and arm64). Validated at
// startup.
package array
