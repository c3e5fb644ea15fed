// Package storage persists analysis artifacts: rendered HTML reports,
// raw JSON results and uploaded contract files. Backed by the local
// filesystem or S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage stores and retrieves analysis artifacts by key.
type Storage interface {
	// Save writes an artifact and returns its storage key
	Save(ctx context.Context, key string, contentType string, data io.Reader) (string, error)

	// Open retrieves an artifact by storage key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes an artifact by storage key
	Remove(ctx context.Context, key string) error
}

// BackendType selects the storage backend
type BackendType string

const (
	BackendLocal BackendType = "local"
	BackendS3    BackendType = "s3"
)

// Config holds storage backend configuration
type Config struct {
	Backend      BackendType
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// New creates a storage backend from configuration
func New(cfg Config) (Storage, error) {
	switch cfg.Backend {
	case BackendLocal:
		return NewLocalStorage(cfg.LocalPath)
	case BackendS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// NewFromEnv creates a storage backend from environment variables
func NewFromEnv() (Storage, error) {
	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = "local"
	}

	switch BackendType(backend) {
	case BackendLocal:
		localPath := os.Getenv("STORAGE_LOCAL_PATH")
		if localPath == "" {
			localPath = "./data/artifacts"
		}
		return NewLocalStorage(localPath)

	case BackendS3:
		cfg := Config{
			Backend:      BackendS3,
			S3Bucket:     os.Getenv("AWS_S3_BUCKET"),
			S3Region:     os.Getenv("AWS_REGION"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		return NewS3Storage(cfg)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// ReportKey builds the storage key for a rendered report: date-bucketed
// so listings stay manageable.
func ReportKey(reportID uuid.UUID, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	now := time.Now().UTC()
	return fmt.Sprintf("reports/%04d/%02d/%s%s", now.Year(), now.Month(), reportID.String(), ext)
}

// UploadKey builds the storage key for an uploaded contract file.
func UploadKey(fileID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, base)
	return fmt.Sprintf("uploads/%s/%s_%s%s", fileID.String()[:2], fileID.String(), base, ext)
}

// ContentTypeFor guesses the content type for an artifact key.
func ContentTypeFor(key string) string {
	switch filepath.Ext(key) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
