// Package vecfile provides an append-only, compressed on-disk vector store
// with externally supplied keys.
//
// A Store persists fixed-dimension numeric vectors as a single compressed
// file of raw row-major bytes. The artifact carries no header: dimension,
// element type and key type are fixed by the first append and must be
// supplied again (or restored from a manifest) before loading. Keys are
// accumulated in an in-memory byte buffer and re-paired with the loaded
// vectors during materialization.
//
// # Write / read cycle
//
//	store := vecfile.New("/data/idx.gz")
//	if err := store.Open(); err != nil { ... }
//	if err := store.Append(keys, vectors); err != nil { ... }
//	if err := store.Close(); err != nil { ... }
//
//	vecs := store.Materialize() // nil means "nothing usable"
//	keys := store.Keys()        // row i of vecs belongs to keys[i]
//
// Append failures are typed (rank, dimension, element type, key count, key
// type) and never perform a partial write. Load failures are normalized to
// a nil result with diagnostics on the configured Logger: a missing file, a
// truncated stream (write session never closed) and a key/vector count
// mismatch all yield nil, distinguished only by log severity.
//
// # Search
//
// Materialized arrays feed search strategies through the index.Builder
// hook; index/flat provides exact search. Remote replication of the
// artifact, key sidecar and manifest goes through blobstore implementations
// (local, S3, MinIO).
//
// # Concurrency
//
// Single-writer: a Store assumes exclusive ownership of its file for the
// duration of a write session. Concurrent writers are unsupported.
package vecfile
