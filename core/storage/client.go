package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client defines the subset of the minio client used by the s3 adapter.
type Client interface {
	// BucketExists checks if a bucket exists.
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	// StatObject fetches object metadata.
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	// PutObject uploads an object.
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	// GetObject downloads an object.
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	// ListObjects lists objects in a bucket.
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	// RemoveObjects deletes multiple objects from a bucket efficiently.
	// objectsCh is a channel of object names to delete.
	RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
}

// newTransport builds an HTTP transport with strict connection timeouts.
func newTransport(timeoutSeconds int) *http.Transport {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
}

// NewClient creates a new Minio client based on the configuration.
func NewClient(cfg Config) (Client, error) {
	// Minio expects endpoint without scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(cfg.TimeoutSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &minioClientWrapper{Client: minioClient}, nil
}

type minioClientWrapper struct {
	*minio.Client
}

func (c *minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucketName, objectName, opts)
}

// S3Adapter serves the s3 kind on top of minio-go.
type S3Adapter struct {
	client    Client
	bucket    string
	prefix    string
	integrity bool
}

// NewS3Adapter wraps a minio client bound to cfg.Bucket.
func NewS3Adapter(client Client, cfg Config, integrity bool) *S3Adapter {
	return &S3Adapter{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, integrity: integrity}
}

func (a *S3Adapter) Kind() Kind     { return KindS3 }
func (a *S3Adapter) Bucket() string { return a.bucket }

func (a *S3Adapter) Ping(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("s3 bucket %q: %w", a.bucket, err)
	}
	if !exists {
		return fmt.Errorf("s3 bucket %q does not exist", a.bucket)
	}
	return nil
}

// List walks the bucket. minio-go follows continuation tokens internally.
func (a *S3Adapter) List(ctx context.Context, opts ListOptions) ([]FileEntry, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = a.prefix
	}
	var entries []FileEntry
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("s3 list %q: %w", a.bucket, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") && obj.Size == 0 {
			continue
		}
		entries = append(entries, FileEntry{
			Key:          obj.Key,
			MD5:          trimETag(obj.ETag),
			LastModified: obj.LastModified.UTC().UnixMilli(),
			Bytes:        obj.Size,
		})
	}
	return entries, nil
}

func (a *S3Adapter) Download(ctx context.Context, key string) (*Object, error) {
	info, err := a.client.StatObject(ctx, a.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3 stat %q: %w", key, err)
	}
	rc, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3 get %q: %w", key, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("s3 read %q: %w", key, err)
	}
	if a.integrity {
		if err := verify(key, content, info.ETag); err != nil {
			return nil, err
		}
	}

	headers := make(map[string]string, len(info.Metadata)+2)
	for k, v := range info.Metadata {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}
	if info.ContentType != "" {
		headers["content-type"] = info.ContentType
	}
	headers["etag"] = trimETag(info.ETag)
	return &Object{Content: content, Headers: headers}, nil
}

func (a *S3Adapter) Upload(ctx context.Context, key string, content []byte, headers map[string]string) error {
	opts := minio.PutObjectOptions{
		ContentType:    contentType(headers, content),
		SendContentMd5: a.integrity,
	}
	if meta := userMeta(headers, KindS3); len(meta) > 0 {
		opts.UserMetadata = meta
	}
	if _, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(content), int64(len(content)), opts); err != nil {
		return fmt.Errorf("s3 put %q: %w", key, err)
	}
	return nil
}

func (a *S3Adapter) Delete(ctx context.Context, keys []string) (*DeleteResult, error) {
	result := &DeleteResult{}
	for _, chunk := range chunkKeys(keys, MaxDeleteBatch) {
		objectsCh := make(chan minio.ObjectInfo, len(chunk))
		for _, k := range chunk {
			objectsCh <- minio.ObjectInfo{Key: k}
		}
		close(objectsCh)

		part := &DeleteResult{Deleted: len(chunk)}
		for rerr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
			if part.Errors == nil {
				part.Errors = make(map[string]error)
			}
			part.Errors[rerr.ObjectName] = rerr.Err
			part.Deleted--
		}
		result.merge(part)
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}
	return result, nil
}
