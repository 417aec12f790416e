package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/clinicore/decision-api/internal/middleware"
	"github.com/clinicore/decision-api/internal/repository/postgres"
	"github.com/clinicore/decision-api/internal/service/notification"
	"github.com/clinicore/decision-api/pkg/messaging/redis"
	"github.com/clinicore/decision-api/pkg/worker"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type RateLimitConfig struct {
	RPS   float64       `mapstructure:"rps"`
	Burst int           `mapstructure:"burst"`
	TTL   time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	Server    ServerConfig                 `mapstructure:"server"`
	Database  postgres.Config              `mapstructure:"database"`
	JWT       middleware.AuthConfig        `mapstructure:"jwt"`
	Redis     redis.Config                 `mapstructure:"redis"`
	SMTP      notification.Config          `mapstructure:"smtp"`
	Outbox    worker.OutboxProcessorConfig `mapstructure:"outbox"`
	RateLimit RateLimitConfig              `mapstructure:"rate_limit"`
	CORS      CORSConfig                   `mapstructure:"cors"`
	Logging   LoggingConfig                `mapstructure:"logging"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.request_timeout", 30*time.Second)
	viper.SetDefault("server.max_header_bytes", 1<<20)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.name", "clinicore")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)

	viper.SetDefault("outbox.batch_size", 100)
	viper.SetDefault("outbox.poll_interval", 5*time.Second)
	viper.SetDefault("outbox.retention_age", 7*24*time.Hour)

	viper.SetDefault("rate_limit.rps", 50.0)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("rate_limit.ttl", 10*time.Minute)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.pretty", false)
}

// RouterConfig translates the flat file sections into the middleware
// configs the router expects, falling back to defaults for anything
// left unset.
func (c *Config) RouterConfig() middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if c.RateLimit.RPS > 0 {
		rl.RPS = c.RateLimit.RPS
	}
	if c.RateLimit.Burst > 0 {
		rl.Burst = c.RateLimit.Burst
	}
	if c.RateLimit.TTL > 0 {
		rl.TTL = c.RateLimit.TTL
	}
	return rl
}

func (c *Config) CORSMiddlewareConfig() middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(c.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = c.CORS.AllowedOrigins
	}
	if len(c.CORS.AllowedMethods) > 0 {
		cors.AllowMethods = c.CORS.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) > 0 {
		cors.AllowHeaders = c.CORS.AllowedHeaders
	}
	return cors
}
