// Package storage provides an abstraction layer over the object stores a sync
// pair can connect.
//
// Three backends implement the Adapter interface:
//
//   - s3: any S3-compatible endpoint, through minio-go (Client wraps it for mocking)
//   - aws: AWS S3 through aws-sdk-go-v2 (S3API wraps it for mocking)
//   - swift: OpenStack Swift through ncw/swift (SwiftConn wraps it for mocking)
//
// Every listing is normalized into FileEntry values: etag or hash becomes MD5,
// the modification date becomes epoch milliseconds. Bulk deletes are split
// into MaxDeleteBatch sized requests.
//
// # Metadata
//
// ConvertHeaders translates custom metadata between the x-amz-meta- and
// x-object-meta- conventions when an object crosses backends.
//
// # Usage
//
//	src, err := storage.NewAdapter(ctx, cfg.Source, cfg.Sync.IntegrityCheck)
//	entries, err := src.List(ctx, storage.ListOptions{})
package storage
