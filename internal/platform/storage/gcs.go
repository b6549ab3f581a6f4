// Package storage provides the object store for raw document bytes. Kafka
// messages and database rows carry gs:// URIs only; the bucket is the single
// home of original file content.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/finvault-backend/internal/config"
)

// ErrInvalidURI indicates a malformed gs:// object reference
var ErrInvalidURI = errors.New("invalid storage uri")

// ObjectStore abstracts the bucket for handlers and the email processor.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, uri string) ([]byte, error)
	Delete(ctx context.Context, uri string) error
}

// GCSStore implements ObjectStore on a Google Cloud Storage bucket.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	timeout config.StorageConfig
	logger  *slog.Logger
}

var _ ObjectStore = (*GCSStore)(nil)

// NewGCSStore creates a bucket-backed store. Application default
// credentials are used when no credentials file is configured.
func NewGCSStore(ctx context.Context, logger *slog.Logger, cfg *config.StorageConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	logger.Info("Connected to GCS", "bucket", cfg.Bucket)

	return &GCSStore{
		client:  client,
		bucket:  cfg.Bucket,
		timeout: *cfg,
		logger:  logger,
	}, nil
}

// Upload writes the object and returns its gs:// URI.
func (s *GCSStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout.OperationTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		s.logger.Error("Failed to write object", "object", objectName, "error", err)
		return "", fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		s.logger.Error("Failed to finalize object upload", "object", objectName, "error", err)
		return "", fmt.Errorf("failed to finalize object %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Download reads the whole object behind the URI.
func (s *GCSStore) Download(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout.OperationTimeout)
	defer cancel()

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		s.logger.Error("Failed to open object", "uri", uri, "error", err)
		return nil, fmt.Errorf("failed to open object %s: %w", uri, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		s.logger.Error("Failed to read object", "uri", uri, "error", err)
		return nil, fmt.Errorf("failed to read object %s: %w", uri, err)
	}

	return data, nil
}

// Delete removes the object behind the URI.
func (s *GCSStore) Delete(ctx context.Context, uri string) error {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout.OperationTimeout)
	defer cancel()

	if err := s.client.Bucket(bucket).Object(object).Delete(ctx); err != nil {
		s.logger.Error("Failed to delete object", "uri", uri, "error", err)
		return fmt.Errorf("failed to delete object %s: %w", uri, err)
	}

	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// ParseURI splits a gs://bucket/object URI into its parts.
func ParseURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}

	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}

	return bucket, object, nil
}
