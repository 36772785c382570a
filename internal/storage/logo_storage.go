package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// LogoStorage keeps tenant branding assets in object storage. Keys are
// namespaced by tenant so one tenant can never address another's objects.
type LogoStorage struct {
	client *minio.Client
	bucket string
}

func NewLogoStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*LogoStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client init failed: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket check failed: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("bucket create failed: %w", err)
		}
		log.Printf("created bucket %s", bucket)
	}

	return &LogoStorage{client: client, bucket: bucket}, nil
}

// Upload stores the logo and returns its object key.
func (s *LogoStorage) Upload(ctx context.Context, tenantID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	objectKey := fmt.Sprintf("tenants/%s/logo/%s", tenantID, filename)
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("logo upload failed: %w", err)
	}
	return objectKey, nil
}

// PresignedURL returns a time-limited download link for the stored logo.
func (s *LogoStorage) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign failed: %w", err)
	}
	return u.String(), nil
}

func (s *LogoStorage) Delete(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
