// Package blobstore provides storage backends for block device images.
//
// A device image is a flat byte dump, so any store that can put and range-read
// an opaque blob can hold one. Images are written whole with Put and read back
// through Blob.ReadAt.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem; reads through a read-only mmap, writes via temp file + rename
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 (aws-sdk-go-v2)
//   - minio.Store: MinIO and other S3-compatible servers (minio-go)
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
