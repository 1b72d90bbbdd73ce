package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const presignExpiry = time.Hour

// UploadURLProvider mints write-once upload targets for client document
// uploads. The document store itself is external; this service only
// issues presigned URLs and canonical file references.
type UploadURLProvider interface {
	PresignedUploadURL(ctx context.Context, objectKey string) (uploadURL string, fileURL string, err error)
}

// S3Storage issues presigned PUT URLs against an S3-compatible endpoint.
type S3Storage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// Config carries S3 connection settings.
type Config struct {
	Endpoint      string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Region        string
	UseSSL        bool
	PublicBaseURL string
}

// NewS3Storage constructs an S3Storage.
func NewS3Storage(cfg Config) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3Storage{client: client, bucket: cfg.Bucket, publicBaseURL: cfg.PublicBaseURL}, nil
}

// PresignedUploadURL returns a one-hour PUT URL and the canonical file URL
// the object will be reachable at after upload.
func (s *S3Storage) PresignedUploadURL(ctx context.Context, objectKey string) (string, string, error) {
	uploadURL, err := s.client.PresignedPutObject(ctx, s.bucket, objectKey, presignExpiry)
	if err != nil {
		return "", "", fmt.Errorf("presign upload url: %w", err)
	}
	fileURL := fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, objectKey)
	return uploadURL.String(), fileURL, nil
}
