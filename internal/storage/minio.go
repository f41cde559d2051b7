// Package storage issues presigned upload URLs for measurement CSV files.
// The file itself travels directly between the browser and the object store;
// the engine only hands out the URL and later receives the parsed rows from
// the import trigger.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultPresignTTL = 10 * time.Minute

// Uploader is the narrow surface the import handler needs.
type Uploader interface {
	PresignUpload(ctx context.Context, objectName string) (string, time.Time, error)
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type MinioStorage struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewMinioStorage(cfg Config) (*MinioStorage, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket, ttl: defaultPresignTTL}, nil
}

// PresignUpload returns a time-limited PUT URL for the given object name and
// the URL's expiry instant.
func (s *MinioStorage) PresignUpload(ctx context.Context, objectName string) (string, time.Time, error) {
	if objectName == "" {
		return "", time.Time{}, fmt.Errorf("object name is required")
	}

	u, err := s.client.PresignedPutObject(ctx, s.bucket, objectName, s.ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return u.String(), time.Now().Add(s.ttl), nil
}
