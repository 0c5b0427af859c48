package internal

import (
	"errors"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dmitrymomot/popapi/pkg/logger"
)

// Environment names with special behavior.
const (
	EnvTest        = "test"
	EnvDevelopment = "development"
)

const (
	defaultPort            = 5000
	defaultWorkers         = 2
	defaultShutdownTimeout = 30 * time.Second
)

// Config is the process environment.
type Config struct {
	// Env is the deployment environment. "test" silences console logging,
	// "development" adds stacks to error responses.
	Env string `env:"NODE_ENV"`

	Port int `env:"PORT" env-default:"5000"`

	// MongoHost and MongoPort override the configured database hosts and port,
	// as set by linked docker containers.
	MongoHost string `env:"MONGO_PORT_27017_TCP_ADDR"`
	MongoPort int    `env:"MONGO_PORT_27017_TCP_PORT"`

	// RedisURL selects Redis as the content cache backend.
	RedisURL string `env:"REDIS_URL"`

	// CacheTTL enables caching of content reads when positive.
	CacheTTL time.Duration `env:"CACHE_TTL"`

	Sentry logger.SentryConfig

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (c Config) Testing() bool     { return c.Env == EnvTest }
func (c Config) Development() bool { return c.Env == EnvDevelopment }
