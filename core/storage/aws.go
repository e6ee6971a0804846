package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the aws-sdk-go-v2 S3 client used by the aws adapter.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// NewAWSClient builds an aws-sdk-go-v2 S3 client. A configured endpoint
// switches to path-style addressing for S3-compatible services.
func NewAWSClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithHTTPClient(&http.Client{Transport: newTransport(cfg.TimeoutSeconds)}),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// AWSAdapter serves the aws kind on top of aws-sdk-go-v2.
type AWSAdapter struct {
	api       S3API
	bucket    string
	prefix    string
	integrity bool
}

// NewAWSAdapter wraps an S3 API client bound to cfg.Bucket.
func NewAWSAdapter(api S3API, cfg Config, integrity bool) *AWSAdapter {
	return &AWSAdapter{api: api, bucket: cfg.Bucket, prefix: cfg.Prefix, integrity: integrity}
}

func (a *AWSAdapter) Kind() Kind     { return KindAWS }
func (a *AWSAdapter) Bucket() string { return a.bucket }

func (a *AWSAdapter) Ping(ctx context.Context) error {
	if _, err := a.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)}); err != nil {
		return fmt.Errorf("aws bucket %q: %w", a.bucket, err)
	}
	return nil
}

func (a *AWSAdapter) List(ctx context.Context, opts ListOptions) ([]FileEntry, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = a.prefix
	}
	input := &s3.ListObjectsV2Input{Bucket: aws.String(a.bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var entries []FileEntry
	paginator := s3.NewListObjectsV2Paginator(a.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws list %q: %w", a.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			size := aws.ToInt64(obj.Size)
			if strings.HasSuffix(key, "/") && size == 0 {
				continue
			}
			entries = append(entries, FileEntry{
				Key:          key,
				MD5:          trimETag(aws.ToString(obj.ETag)),
				LastModified: aws.ToTime(obj.LastModified).UTC().UnixMilli(),
				Bytes:        size,
			})
		}
	}
	return entries, nil
}

func (a *AWSAdapter) Download(ctx context.Context, key string) (*Object, error) {
	out, err := a.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("aws get %q: %w", key, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("aws read %q: %w", key, err)
	}
	etag := aws.ToString(out.ETag)
	if a.integrity {
		if err := verify(key, content, etag); err != nil {
			return nil, err
		}
	}

	headers := make(map[string]string, len(out.Metadata)+2)
	for k, v := range out.Metadata {
		headers[KindAWS.metaPrefix()+strings.ToLower(k)] = v
	}
	if ct := aws.ToString(out.ContentType); ct != "" {
		headers["content-type"] = ct
	}
	headers["etag"] = trimETag(etag)
	return &Object{Content: content, Headers: headers}, nil
}

func (a *AWSAdapter) Upload(ctx context.Context, key string, content []byte, headers map[string]string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(contentType(headers, content)),
	}
	if meta := userMeta(headers, KindAWS); len(meta) > 0 {
		input.Metadata = meta
	}
	if a.integrity {
		input.ContentMD5 = aws.String(md5Base64(content))
	}
	if _, err := a.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("aws put %q: %w", key, err)
	}
	return nil
}

func (a *AWSAdapter) Delete(ctx context.Context, keys []string) (*DeleteResult, error) {
	result := &DeleteResult{}
	for _, chunk := range chunkKeys(keys, MaxDeleteBatch) {
		ids := make([]types.ObjectIdentifier, len(chunk))
		for i, k := range chunk {
			ids[i] = types.ObjectIdentifier{Key: aws.String(k)}
		}
		out, err := a.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(a.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return result, fmt.Errorf("aws delete %d objects: %w", len(chunk), err)
		}

		part := &DeleteResult{Deleted: len(chunk)}
		for _, e := range out.Errors {
			if part.Errors == nil {
				part.Errors = make(map[string]error)
			}
			part.Errors[aws.ToString(e.Key)] = fmt.Errorf("%s: %s", aws.ToString(e.Code), aws.ToString(e.Message))
			part.Deleted--
		}
		result.merge(part)
	}
	return result, nil
}
