package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage defines the interface for document blob storage
type Storage interface {
	// Save stores a file at the given key
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves a file by key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by key
	Delete(ctx context.Context, key string) error

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// GetSize returns the size of a file in bytes
	GetSize(ctx context.Context, key string) (int64, error)
}

// Config holds storage configuration
type Config struct {
	Type      string // local, s3
	BasePath  string // For local storage
	BaseURL   string // Public URL base
	Bucket    string // For S3
	Region    string // For S3
	AccessKey string // For S3
	SecretKey string // For S3
	Endpoint  string // For S3-compatible stores
	UseSSL    bool
}

// NewStorage creates a storage backend based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
