package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/adcreativeflow/internal/gcp"
)

// ImageSink persists generated image bytes under a name and returns the
// location callers can use to retrieve them.
type ImageSink interface {
	Save(ctx context.Context, objectName string, data []byte) (string, error)
}

// LocalSink writes images to a directory served as /static by the HTTP
// transport.
type LocalSink struct {
	dir     string
	baseURL string
}

// NewLocalSink creates the directory if needed.
func NewLocalSink(dir, baseURL string) (*LocalSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", dir, err)
	}
	return &LocalSink{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalSink) Save(_ context.Context, objectName string, data []byte) (string, error) {
	path := filepath.Join(s.dir, objectName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", path, err)
	}
	return fmt.Sprintf("%s/static/%s", s.baseURL, objectName), nil
}

// GCSSink writes images to a GCS bucket using the shared atomic save, so a
// retried run never clobbers an existing object.
type GCSSink struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewGCSSink wraps an existing storage client.
func NewGCSSink(client *storage.Client, bucketName string) (*GCSSink, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name must be provided")
	}
	return &GCSSink{bucket: client.Bucket(bucketName), bucketName: bucketName}, nil
}

func (s *GCSSink) Save(ctx context.Context, objectName string, data []byte) (string, error) {
	if err := gcp.SaveBytesToGCSAtomically(ctx, s.bucket, objectName, "image/png", data); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", s.bucketName, objectName), nil
}
