// Package blobstore provides storage abstraction for vecfile artifacts.
//
// A store's on-disk artifacts (the compressed vector file, the key sidecar,
// the manifest) are immutable once published, so BlobStore only needs
// whole-blob reads and writes: there is no random access into a compressed
// vector artifact.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap-backed reads and atomic writes
//   - MemoryStore: in-memory store for tests
//   - s3.Store: Amazon S3 with streaming multipart uploads
//   - s3.DDBCommitStore: S3 plus DynamoDB conditional writes for atomic
//     manifest publication
//   - minio.Store: MinIO and other S3-compatible object stores
//
// Implementations must be safe for concurrent use.
package blobstore
