// internal/app/storage/images.go
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/findxvision/casewatch/internal/app/system/apperr"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxImageSize bounds case image uploads (10 MiB).
const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Config holds the S3-compatible storage settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL is the prefix for serving stored objects, e.g. a
	// CDN in front of the bucket. Empty derives it from the endpoint.
	PublicBaseURL string
}

// ImageStore uploads case images to an S3-compatible bucket.
type ImageStore struct {
	client *minio.Client
	cfg    Config
}

// NewImageStore connects to the object store. Empty config leaves
// the store disabled; uploads then fail with a clear error instead
// of panicking at startup.
func NewImageStore(cfg Config) (*ImageStore, error) {
	if cfg.Endpoint == "" {
		return &ImageStore{cfg: cfg}, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	return &ImageStore{client: client, cfg: cfg}, nil
}

// Enabled reports whether storage is configured.
func (s *ImageStore) Enabled() bool {
	return s != nil && s.client != nil
}

// Upload stores one case image and returns its object key and public
// URL. Content type and size are validated before any bytes move.
func (s *ImageStore) Upload(ctx context.Context, caseID, filename, contentType string, size int64, r io.Reader) (objectKey, url string, err error) {
	if !s.Enabled() {
		return "", "", fmt.Errorf("image upload: %w", apperr.ErrChannelDisabled)
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported image type %q", apperr.ErrValidation, contentType)
	}
	if size <= 0 || size > MaxImageSize {
		return "", "", fmt.Errorf("%w: image size must be between 1 byte and %d bytes", apperr.ErrValidation, MaxImageSize)
	}

	objectKey = fmt.Sprintf("cases/%s/%s%s", caseID, uuid.NewString(), ext)
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("image upload: %w", err)
	}
	return objectKey, s.publicURL(objectKey), nil
}

// Remove deletes a stored object. Used when a case image record
// fails to land after upload.
func (s *ImageStore) Remove(ctx context.Context, objectKey string) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.RemoveObject(ctx, s.cfg.Bucket, objectKey, minio.RemoveObjectOptions{})
}

func (s *ImageStore) publicURL(objectKey string) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if s.cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket)
	}
	return strings.TrimSuffix(base, "/") + "/" + objectKey
}
