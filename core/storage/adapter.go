package storage

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxDeleteBatch is the largest number of keys sent in a single bulk delete call.
const MaxDeleteBatch = 1000

// FileEntry is the normalized description of one stored object.
type FileEntry struct {
	Key          string `json:"key"`
	MD5          string `json:"md5"`
	LastModified int64  `json:"lastmodified"`
	Bytes        int64  `json:"bytes"`
	SourceKey    string `json:"source,omitempty"`
	TargetKey    string `json:"target,omitempty"`
	Updated      bool   `json:"updated,omitempty"`
}

// Clone returns a copy of the entry.
func (e *FileEntry) Clone() *FileEntry {
	c := *e
	return &c
}

// Object is a downloaded object with its lower-cased response headers.
type Object struct {
	Content []byte
	Headers map[string]string
}

// DeleteResult reports a bulk delete. Errors is keyed by object name.
type DeleteResult struct {
	Deleted int
	Errors  map[string]error
}

func (r *DeleteResult) merge(other *DeleteResult) {
	r.Deleted += other.Deleted
	for k, err := range other.Errors {
		if r.Errors == nil {
			r.Errors = make(map[string]error)
		}
		r.Errors[k] = err
	}
}

// ListOptions narrows a listing.
type ListOptions struct {
	Prefix string
}

// Adapter is the capability set every backend provides.
type Adapter interface {
	// Kind reports the backend protocol.
	Kind() Kind
	// Bucket reports the bucket or container the adapter is bound to.
	Bucket() string
	// Ping verifies credentials and bucket access.
	Ping(ctx context.Context) error
	// List returns every object, following pagination until exhausted.
	List(ctx context.Context, opts ListOptions) ([]FileEntry, error)
	// Download fetches an object body and its headers.
	Download(ctx context.Context, key string) (*Object, error)
	// Upload stores content under key with the given lower-cased headers.
	Upload(ctx context.Context, key string, content []byte, headers map[string]string) error
	// Delete removes keys, splitting them into MaxDeleteBatch sized calls.
	Delete(ctx context.Context, keys []string) (*DeleteResult, error)
}

// ErrIntegrity is matched by every IntegrityError.
var ErrIntegrity = errors.New("integrity check failed")

// IntegrityError reports a downloaded body whose hash does not match the backend etag.
type IntegrityError struct {
	Key      string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %q: etag %s, body md5 %s", e.Key, e.Expected, e.Actual)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// NewAdapter builds the adapter matching cfg.Kind. When integrity is set,
// downloads are verified and uploads carry a content hash.
func NewAdapter(ctx context.Context, cfg Config, integrity bool) (Adapter, error) {
	kind, err := ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindAWS:
		api, err := NewAWSClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewAWSAdapter(api, cfg, integrity), nil
	case KindSwift:
		return NewSwiftAdapter(NewSwiftConnection(cfg), cfg, integrity), nil
	default:
		client, err := NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Adapter(client, cfg, integrity), nil
	}
}

func md5Hex(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

func md5Base64(content []byte) string {
	sum := md5.Sum(content)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}

// verify compares a body against the etag reported by the backend. An empty
// etag is not checked.
func verify(key string, content []byte, etag string) error {
	etag = trimETag(etag)
	if etag == "" {
		return nil
	}
	if actual := md5Hex(content); !strings.EqualFold(actual, etag) {
		return &IntegrityError{Key: key, Expected: etag, Actual: actual}
	}
	return nil
}

// contentType returns the content-type header, or sniffs one from the body.
func contentType(headers map[string]string, content []byte) string {
	if ct := headers["content-type"]; ct != "" {
		return ct
	}
	return mimetype.Detect(content).String()
}

// chunkKeys splits keys into slices of at most size keys.
func chunkKeys(keys []string, size int) [][]string {
	var out [][]string
	for len(keys) > size {
		out = append(out, keys[:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		out = append(out, keys)
	}
	return out
}

// userMeta extracts custom metadata from headers, stripping the kind's prefix.
func userMeta(headers map[string]string, kind Kind) map[string]string {
	prefix := kind.metaPrefix()
	meta := make(map[string]string)
	for k, v := range headers {
		if name, ok := strings.CutPrefix(strings.ToLower(k), prefix); ok {
			meta[name] = v
		}
	}
	return meta
}
