// Package source opens the inputs given to the jfifmeta command.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bep/jfifmeta/internal/config"
	"github.com/bep/jfifmeta/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Scheme prefixes inputs read from S3-compatible storage.
const S3Scheme = "s3://"

// ErrS3NotConfigured is returned when an s3:// input is given but no S3 endpoint is set.
var ErrS3NotConfigured = errors.New("S3 endpoint not configured")

// ObjectGetter fetches an object from a bucket.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Opener opens local files and s3://bucket/key objects.
type Opener struct {
	// S3 is used for s3:// names. May be nil.
	S3 ObjectGetter
}

// Open opens name for reading. The caller must close it.
func (o Opener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !strings.HasPrefix(name, S3Scheme) {
		return os.Open(name)
	}

	bucket, key, err := ParseS3Name(name)
	if err != nil {
		return nil, err
	}
	if o.S3 == nil {
		return nil, ErrS3NotConfigured
	}
	logger.Debug("Fetching object %s from bucket %s", key, bucket)
	return o.S3.GetObject(ctx, bucket, key)
}

// ParseS3Name splits s3://bucket/key into its bucket and key.
func ParseS3Name(name string) (bucket, key string, err error) {
	bucket, key, _ = strings.Cut(strings.TrimPrefix(name, S3Scheme), "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 name %q, expected s3://bucket/key", name)
	}
	return bucket, key, nil
}

// MinioGetter is an ObjectGetter backed by the MinIO SDK.
type MinioGetter struct {
	client *minio.Client
}

// NewMinioGetter creates a MinIO client for cfg. No connection is made until the first GetObject.
func NewMinioGetter(cfg config.S3Config) (*MinioGetter, error) {
	if cfg.Endpoint == "" {
		return nil, ErrS3NotConfigured
	}

	// Remove protocol prefix if present
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &MinioGetter{client: client}, nil
}

// GetObject opens the object for reading. The object is stat'ed first so
// that a missing key fails here rather than on the first read.
func (g *MinioGetter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := g.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s not found in bucket %s: %w", key, bucket, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	logger.Debug("Opened object %s (%d bytes, etag: %s)", key, info.Size, info.ETag)
	return obj, nil
}
