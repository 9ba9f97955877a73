// Package minio implements blobstore.BlobStore for MinIO and other
// S3-compatible object stores, using the native MinIO client.
//
// Prefer this package over blobstore/s3 when targeting self-hosted MinIO:
// it speaks the same wire protocol but avoids pulling AWS credential
// resolution into the deployment.
package minio
