package storage

import "fmt"

// Kind identifies the backend protocol of a storage endpoint.
type Kind string

const (
	// KindS3 talks to any S3-compatible endpoint through minio-go.
	KindS3 Kind = "s3"
	// KindAWS talks to AWS S3 (or a compatible endpoint) through aws-sdk-go-v2.
	KindAWS Kind = "aws"
	// KindSwift talks to OpenStack Swift.
	KindSwift Kind = "swift"
)

// ParseKind validates a configured backend kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindS3, KindAWS, KindSwift:
		return k, nil
	default:
		return "", fmt.Errorf("unknown storage kind %q (expected s3, aws or swift)", s)
	}
}

// metaPrefix returns the custom metadata header prefix used by the kind.
func (k Kind) metaPrefix() string {
	if k == KindSwift {
		return "x-object-meta-"
	}
	return "x-amz-meta-"
}

// Config holds configuration for one side of a sync pair.
type Config struct {
	// Kind selects the backend: s3, aws or swift.
	Kind string `mapstructure:"kind" default:"s3"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the bucket (or Swift container) to synchronize.
	Bucket string `mapstructure:"bucket" default:""`
	// Prefix restricts listing to keys starting with it.
	Prefix string `mapstructure:"prefix" default:""`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`

	// AuthURL is the Swift (Keystone) authentication endpoint.
	AuthURL string `mapstructure:"auth_url" default:""`
	// Username is the Swift user name.
	Username string `mapstructure:"username" default:""`
	// APIKey is the Swift password or API key.
	APIKey string `mapstructure:"api_key" default:""`
	// Tenant is the Swift tenant (project) name.
	Tenant string `mapstructure:"tenant" default:""`
	// TenantID is the Swift tenant (project) id.
	TenantID string `mapstructure:"tenant_id" default:""`
	// Domain is the Keystone v3 user domain.
	Domain string `mapstructure:"domain" default:""`
	// AuthVersion forces the Keystone version (0 autodetects).
	AuthVersion int `mapstructure:"auth_version" default:"0"`
	// PageSize is the listing page size for Swift containers.
	PageSize int `mapstructure:"page_size" default:"10000"`
}

// Validate checks the fields required by the selected kind.
func (c Config) Validate() error {
	kind, err := ParseKind(c.Kind)
	if err != nil {
		return err
	}
	if c.Bucket == "" {
		return fmt.Errorf("%s storage: bucket is required", kind)
	}
	if kind == KindSwift && c.AuthURL == "" {
		return fmt.Errorf("swift storage: auth_url is required")
	}
	return nil
}
