package config

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/weiawesome/wes-io-live/pin-service/internal/seal"
	"github.com/weiawesome/wes-io-live/pin-service/internal/state"
	pkgconfig "github.com/weiawesome/wes-io-live/pkg/config"
	"github.com/weiawesome/wes-io-live/pkg/pubsub"
)

type Config struct {
	Server ServerConfig
	GRPC   GRPCConfig `mapstructure:"grpc"`
	Pin    PinConfig
	State  StateConfig
	Events pubsub.Config
	Auth   AuthConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	// ShutdownTimeout bounds graceful shutdown of both listeners.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Enabled bool
	Host    string
	Port    int
}

type PinConfig struct {
	Length   int
	Charset  string
	MaxBatch int `mapstructure:"max_batch"`
}

type StateConfig struct {
	state.Config `mapstructure:",squash"`
	Seal         SealConfig
}

type SealConfig struct {
	Passphrase string
	// Scope binds sealed keys to a principal; empty means the OS user.
	Scope  string
	Params seal.Params `mapstructure:"params"`
}

type AuthConfig struct {
	// Secret enables bearer-token auth on the API when set.
	Secret        string
	Issuer        string
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Flags returns the command line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("pin-service", pflag.ContinueOnError)
	fs.String("config", "./config", "directory holding config.yaml")
	fs.Int("server.port", 8090, "HTTP listen port")
	fs.Int("grpc.port", 50060, "gRPC listen port")
	fs.String("state.driver", "local", "state backend: memory, local, s3, redis, database")
	fs.String("log.level", "info", "log level")
	return fs
}

func Load(flags *pflag.FlagSet) (*Config, error) {
	configPath := "./config"
	if flags != nil {
		if p, err := flags.GetString("config"); err == nil && p != "" {
			configPath = p
		}
	}

	v, err := pkgconfig.Load(configPath, "config", flags)
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50060)
	v.SetDefault("pin.length", 4)
	v.SetDefault("pin.charset", "0123456789")
	v.SetDefault("pin.max_batch", 100)
	v.SetDefault("state.driver", "local")
	v.SetDefault("state.key_prefix", "pin")
	v.SetDefault("state.local.base_path", "./data/pins")
	v.SetDefault("state.s3.region", "us-east-1")
	v.SetDefault("state.redis.address", "localhost:6379")
	v.SetDefault("state.database.driver", "sqlite")
	v.SetDefault("state.database.host", "localhost")
	v.SetDefault("state.database.port", 5432)
	v.SetDefault("state.database.dbname", "pin_service")
	v.SetDefault("state.database.sslmode", "disable")
	v.SetDefault("state.database.file_path", "./data/pins.db")
	v.SetDefault("state.database.max_idle_conns", 5)
	v.SetDefault("state.database.max_open_conns", 20)
	v.SetDefault("state.database.conn_max_lifetime", 60)
	v.SetDefault("state.seal.params.time", 1)
	v.SetDefault("state.seal.params.memory", 64*1024)
	v.SetDefault("state.seal.params.threads", 4)
	v.SetDefault("events.driver", "none")
	v.SetDefault("events.redis.address", "localhost:6379")
	v.SetDefault("events.redis.pool_size", 10)
	v.SetDefault("events.redis.read_timeout", 3*time.Second)
	v.SetDefault("events.redis.write_timeout", 3*time.Second)
	v.SetDefault("events.kafka.brokers", "localhost:9092")
	v.SetDefault("events.kafka.topic", "pin-stream-events")
	v.SetDefault("events.kafka.partitions", 4)
	v.SetDefault("auth.issuer", "pin-service")
	v.SetDefault("auth.token_duration", time.Hour)
	v.SetDefault("log.level", "info")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("grpc.port", "GRPC_PORT")
	v.BindEnv("pin.length", "PIN_LENGTH")
	v.BindEnv("pin.charset", "PIN_CHARSET")
	v.BindEnv("state.driver", "STATE_DRIVER")
	v.BindEnv("state.local.base_path", "STATE_PATH")
	v.BindEnv("state.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("state.s3.bucket", "S3_BUCKET")
	v.BindEnv("state.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("state.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("state.redis.address", "REDIS_ADDRESS")
	v.BindEnv("state.redis.password", "REDIS_PASSWORD")
	v.BindEnv("state.database.driver", "DB_DRIVER")
	v.BindEnv("state.database.host", "DB_HOST")
	v.BindEnv("state.database.port", "DB_PORT")
	v.BindEnv("state.database.user", "DB_USER")
	v.BindEnv("state.database.password", "DB_PASSWORD")
	v.BindEnv("state.database.dbname", "DB_NAME")
	v.BindEnv("state.seal.passphrase", "PIN_SEAL_PASSPHRASE")
	v.BindEnv("state.seal.scope", "PIN_SEAL_SCOPE")
	v.BindEnv("events.driver", "EVENTS_DRIVER")
	v.BindEnv("events.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("auth.secret", "JWT_SECRET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
