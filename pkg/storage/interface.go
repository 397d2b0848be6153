package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Read when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// Storage stores small objects by key.
type Storage interface {
	// Write replaces the object under key. Readers never observe a partial write.
	Write(ctx context.Context, key string, data []byte, contentType string) error

	// Read returns the object under key or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
}

// Config selects and configures a Storage backend.
type Config struct {
	Type  string      `mapstructure:"type"` // local, s3
	Local LocalConfig `mapstructure:"local"`
	S3    S3Config    `mapstructure:"s3"`
}

// New builds the backend named by cfg.Type.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg.Local)
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
