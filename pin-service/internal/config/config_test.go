package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	flags := Flags()
	require.NoError(t, flags.Parse([]string{"--config", t.TempDir()}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.GRPC.Enabled)
	assert.Equal(t, 50060, cfg.GRPC.Port)
	assert.Equal(t, 4, cfg.Pin.Length)
	assert.Equal(t, "0123456789", cfg.Pin.Charset)
	assert.Equal(t, 100, cfg.Pin.MaxBatch)
	assert.Equal(t, "local", cfg.State.Driver)
	assert.Equal(t, "pin", cfg.State.KeyPrefix)
	assert.Equal(t, "./data/pins", cfg.State.Local.BasePath)
	assert.Equal(t, "sqlite", cfg.State.Database.Driver)
	assert.Equal(t, uint32(64*1024), cfg.State.Seal.Params.Memory)
	assert.Equal(t, uint8(4), cfg.State.Seal.Params.Threads)
	assert.Equal(t, "none", cfg.Events.Driver)
	assert.Equal(t, "pin-stream-events", cfg.Events.Kafka.Topic)
	assert.Equal(t, time.Hour, cfg.Auth.TokenDuration)
	assert.Empty(t, cfg.Auth.Secret)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	yaml := `
pin:
  length: 6
  charset: "0123456789ABCDEF"
state:
  driver: redis
  key_prefix: doors
  redis:
    address: redis:6379
  seal:
    passphrase: hunter2
    scope: door-controller
events:
  driver: kafka
  kafka:
    brokers: kafka:9092
auth:
  secret: s3cret
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	flags := Flags()
	require.NoError(t, flags.Parse([]string{"--config", dir, "--server.port", "9000", "--log.level", "debug"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 6, cfg.Pin.Length)
	assert.Equal(t, "0123456789ABCDEF", cfg.Pin.Charset)
	assert.Equal(t, "redis", cfg.State.Driver)
	assert.Equal(t, "doors", cfg.State.KeyPrefix)
	assert.Equal(t, "redis:6379", cfg.State.Redis.Address)
	assert.Equal(t, "hunter2", cfg.State.Seal.Passphrase)
	assert.Equal(t, "door-controller", cfg.State.Seal.Scope)
	assert.Equal(t, "kafka", cfg.Events.Driver)
	assert.Equal(t, "kafka:9092", cfg.Events.Kafka.Brokers)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("STATE_DRIVER", "database")
	t.Setenv("PIN_SEAL_PASSPHRASE", "from-env")
	t.Setenv("PORT", "8181")

	flags := Flags()
	require.NoError(t, flags.Parse([]string{"--config", t.TempDir()}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, "database", cfg.State.Driver)
	assert.Equal(t, "from-env", cfg.State.Seal.Passphrase)
	assert.Equal(t, 8181, cfg.Server.Port)
}
