package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
)

// RedisConfig holds Redis connection settings for the redis driver.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RedisStore keeps one encoded record per stream under prefix:state:<id>.
// Keys never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
	codec  *Codec
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, prefix string, codec *Codec) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		codec:  codec,
	}
}

func (s *RedisStore) BuildKey(id string) string {
	return fmt.Sprintf("%s:state:%s", s.prefix, id)
}

func (s *RedisStore) Load(ctx context.Context, id string) (pin.State, bool, error) {
	data, err := s.client.Get(ctx, s.BuildKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return pin.State{}, false, nil
		}
		return pin.State{}, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	st, err := s.codec.Decode(id, data)
	if err != nil {
		return pin.State{}, false, err
	}
	return st, true, nil
}

func (s *RedisStore) Store(ctx context.Context, id string, st pin.State) error {
	data, err := s.codec.Encode(id, st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.BuildKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
