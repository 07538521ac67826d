package config

import (
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	Postgres PostgresConfig
}

type HTTPConfig struct {
	Host              string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	URL              string        `env:"POSTGRES_URL" env-required:"true"`
	Username         string        `env:"POSTGRES_USERNAME"`
	Password         string        `env:"POSTGRES_PASSWORD"`
	MaxConns         int32         `env:"POSTGRES_MAX_CONNS" env-default:"10"`
	ConnectTimeout   time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout      time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	SchemaGeneration string        `env:"SCHEMA_GENERATION" env-default:"none"`
}

// Validate checks the values cleanenv cannot constrain through struct tags.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %q", c.Env)
	}

	if c.Postgres.MaxConns <= 0 {
		return fmt.Errorf("postgres max conns must be positive, got %d", c.Postgres.MaxConns)
	}
	return nil
}
