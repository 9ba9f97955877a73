// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Uploads stream through the s3/manager multipart uploader so large vector
// artifacts never have to be buffered in memory. For deployments that need
// atomic manifest publication with multiple writers, DDBCommitStore layers
// DynamoDB conditional writes on top of the plain object store.
package s3
