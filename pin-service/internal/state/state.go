// Package state persists resumable PIN stream state. Every backend stores the
// key sealed, never in the clear.
package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
	"github.com/weiawesome/wes-io-live/pkg/database"
	"github.com/weiawesome/wes-io-live/pkg/storage"
)

var ErrUnknownDriver = errors.New("unknown state driver")

// Store is a pin.StateStore that owns a backend connection.
type Store interface {
	pin.StateStore
	Close() error
}

// Config selects and configures the state backend.
type Config struct {
	Driver    string              `mapstructure:"driver"` // memory, local, s3, redis, database
	KeyPrefix string              `mapstructure:"key_prefix"`
	Local     storage.LocalConfig `mapstructure:"local"`
	S3        storage.S3Config    `mapstructure:"s3"`
	Redis     RedisConfig         `mapstructure:"redis"`
	Database  database.Config     `mapstructure:"database"`
}

// New opens the backend named by cfg.Driver. The memory driver ignores codec.
func New(ctx context.Context, cfg Config, codec *Codec) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil

	case "local", "s3":
		st, err := storage.New(ctx, storage.Config{
			Type:  cfg.Driver,
			Local: cfg.Local,
			S3:    cfg.S3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Driver, err)
		}
		return NewBlobStore(st, cfg.KeyPrefix, codec), nil

	case "redis":
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.KeyPrefix, codec), nil

	case "database":
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db, &PinStateModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate pin_states: %w", err)
		}
		return NewGormStore(db, codec), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
