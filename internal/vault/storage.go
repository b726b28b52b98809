// Package vault stores document and photo files in S3-compatible object
// storage. Metadata lives in SQLite; only the bytes go to the bucket.
package vault

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Storage uploads and retrieves vault objects.
type Storage struct {
	cfg    Config
	client s3Client
}

// New creates a vault storage backend. If credentials are missing the
// storage is disabled and every operation returns an error, without
// blocking the rest of the server.
func New(cfg Config) *Storage {
	s := &Storage{cfg: cfg}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		s.client = newS3Client(cfg)
	}
	return s
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Configured returns true if object storage credentials are set.
func (s *Storage) Configured() bool {
	return s.client != nil
}

// ObjectKey builds a unique key for a new upload, namespaced by user so
// bucket listings stay navigable. The original filename is kept for its
// extension only.
func ObjectKey(userID int64, kind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%d/%s/%s%s", userID, kind, uuid.NewString(), ext)
}

// Upload stores an object under key.
func (s *Storage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if s.client == nil {
		return fmt.Errorf("vault not configured: S3 credentials missing")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("upload to s3: %w", err)
	}
	return nil
}

// Download streams an object. The caller must close the reader.
func (s *Storage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if s.client == nil {
		return nil, "", fmt.Errorf("vault not configured: S3 credentials missing")
	}
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("download from s3: %w", err)
	}
	return result.Body, aws.ToString(result.ContentType), nil
}

// Delete removes an object. Missing objects are not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return fmt.Errorf("vault not configured: S3 credentials missing")
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete from s3: %w", err)
	}
	return nil
}
