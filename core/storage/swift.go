package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/ncw/swift/v2"
)

// SwiftConn is the subset of *swift.Connection used by the swift adapter.
type SwiftConn interface {
	Authenticate(ctx context.Context) error
	Objects(ctx context.Context, container string, opts *swift.ObjectsOpts) ([]swift.Object, error)
	ObjectGet(ctx context.Context, container, objectName string, contents io.Writer, checkHash bool, h swift.Headers) (swift.Headers, error)
	ObjectPut(ctx context.Context, container, objectName string, contents io.Reader, checkHash bool, hash string, contentType string, h swift.Headers) (swift.Headers, error)
	BulkDelete(ctx context.Context, container string, objectNames []string) (swift.BulkDeleteResult, error)
}

// NewSwiftConnection prepares a Swift connection. Authentication happens lazily
// on the first request, or explicitly through Ping.
func NewSwiftConnection(cfg Config) *swift.Connection {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &swift.Connection{
		UserName:       cfg.Username,
		ApiKey:         cfg.APIKey,
		AuthUrl:        cfg.AuthURL,
		Domain:         cfg.Domain,
		Tenant:         cfg.Tenant,
		TenantId:       cfg.TenantID,
		Region:         cfg.Region,
		AuthVersion:    cfg.AuthVersion,
		ConnectTimeout: timeout,
		Timeout:        timeout * 2,
		Transport:      newTransport(cfg.TimeoutSeconds),
	}
}

// SwiftAdapter serves the swift kind on top of ncw/swift.
type SwiftAdapter struct {
	conn      SwiftConn
	container string
	prefix    string
	pageSize  int
	integrity bool
}

// NewSwiftAdapter wraps a Swift connection bound to cfg.Bucket.
func NewSwiftAdapter(conn SwiftConn, cfg Config, integrity bool) *SwiftAdapter {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10000
	}
	return &SwiftAdapter{conn: conn, container: cfg.Bucket, prefix: cfg.Prefix, pageSize: pageSize, integrity: integrity}
}

func (a *SwiftAdapter) Kind() Kind     { return KindSwift }
func (a *SwiftAdapter) Bucket() string { return a.container }

func (a *SwiftAdapter) Ping(ctx context.Context) error {
	if err := a.conn.Authenticate(ctx); err != nil {
		return fmt.Errorf("swift authentication: %w", err)
	}
	return nil
}

// List pages through the container with markers until a short page is returned.
func (a *SwiftAdapter) List(ctx context.Context, opts ListOptions) ([]FileEntry, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = a.prefix
	}
	var (
		entries []FileEntry
		marker  string
	)
	for {
		page, err := a.conn.Objects(ctx, a.container, &swift.ObjectsOpts{
			Limit:  a.pageSize,
			Marker: marker,
			Prefix: prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("swift list %q: %w", a.container, err)
		}
		for _, obj := range page {
			if obj.PseudoDirectory {
				continue
			}
			entries = append(entries, FileEntry{
				Key:          obj.Name,
				MD5:          obj.Hash,
				LastModified: obj.LastModified.UTC().UnixMilli(),
				Bytes:        obj.Bytes,
			})
		}
		if len(page) < a.pageSize {
			return entries, nil
		}
		marker = page[len(page)-1].Name
	}
}

func (a *SwiftAdapter) Download(ctx context.Context, key string) (*Object, error) {
	var buf bytes.Buffer
	h, err := a.conn.ObjectGet(ctx, a.container, key, &buf, false, nil)
	if err != nil {
		return nil, fmt.Errorf("swift get %q: %w", key, err)
	}

	headers := make(map[string]string, len(h))
	for k, v := range h {
		headers[strings.ToLower(k)] = v
	}
	if a.integrity {
		if err := verify(key, buf.Bytes(), headers["etag"]); err != nil {
			return nil, err
		}
	}
	return &Object{Content: buf.Bytes(), Headers: headers}, nil
}

func (a *SwiftAdapter) Upload(ctx context.Context, key string, content []byte, headers map[string]string) error {
	h := swift.Headers{}
	for k, v := range headers {
		if strings.HasPrefix(strings.ToLower(k), KindSwift.metaPrefix()) {
			h[k] = v
		}
	}
	var hash string
	if a.integrity {
		hash = md5Hex(content)
	}
	if _, err := a.conn.ObjectPut(ctx, a.container, key, bytes.NewReader(content), a.integrity, hash, contentType(headers, content), h); err != nil {
		return fmt.Errorf("swift put %q: %w", key, err)
	}
	return nil
}

func (a *SwiftAdapter) Delete(ctx context.Context, keys []string) (*DeleteResult, error) {
	result := &DeleteResult{}
	for _, chunk := range chunkKeys(keys, MaxDeleteBatch) {
		res, err := a.conn.BulkDelete(ctx, a.container, chunk)
		// A partial failure comes back as an error status alongside the
		// per-object result.
		if err != nil && len(res.Errors) == 0 {
			return result, fmt.Errorf("swift delete %d objects: %w", len(chunk), err)
		}
		// Objects already gone count as deleted.
		part := &DeleteResult{Deleted: int(res.NumberDeleted + res.NumberNotFound)}
		for path, perr := range res.Errors {
			if part.Errors == nil {
				part.Errors = make(map[string]error, len(res.Errors))
			}
			part.Errors[a.objectName(path)] = perr
		}
		result.merge(part)
	}
	return result, nil
}

// objectName turns a bulk delete error path such as /container/dir%20a/b
// back into the object name.
func (a *SwiftAdapter) objectName(path string) string {
	name := strings.TrimPrefix(path, "/")
	name = strings.TrimPrefix(name, a.container+"/")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
