// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" env-default:":8080"`
	OpsAddr         string        `env:"OPS_ADDR" env-default:":9090"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`

	SQLitePath   string `env:"SQLITE_DB_PATH" env-default:"./goblog.db"`
	LogLevel     string `env:"LOG_LEVEL" env-default:"info"`
	PostsPerPage int    `env:"POSTS_PER_PAGE" env-default:"10"`

	SignedPosts bool              `env:"BLOG_SIGNED_POSTS" env-default:"false"`
	AdminUsers  map[string]string `env:"BLOG_ADMIN_USERS"`
	SiteURL     string            `env:"BLOG_URL" env-default:"https://blog.werewolves.fyi"`

	NatsURL           string `env:"NATS_URL"`
	NatsSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" env-default:"blog.post"`

	RedisURL       string        `env:"REDIS_URL"`
	RenderCacheTTL time.Duration `env:"RENDER_CACHE_TTL" env-default:"1h"`
}

// Load reads a .env file from the working directory if there is one, then
// the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	return FromEnv()
}

func FromEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if cfg.PostsPerPage < 1 {
		return nil, fmt.Errorf("config error: POSTS_PER_PAGE must be positive, got %d", cfg.PostsPerPage)
	}

	return &cfg, nil
}
