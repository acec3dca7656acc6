// Package blobstore provides storage for dupgraph artifacts.
//
// Component and community models are written as self-describing binary
// containers (see package persistence). BlobStore decouples where those bytes
// live from how they are encoded. Implementations must be safe for concurrent
// use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic rename on commit, mmap reads
//   - MemoryStore: in-process map, useful in tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// Writers only publish a blob once Close succeeds. WriteFunc aborts the write
// if the encoder fails, so a partially encoded artifact is never visible.
package blobstore
