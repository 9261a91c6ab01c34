// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Log configures the logger.
type Log struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

// Config holds every setting of the service.
type Config struct {
	Addr      string `env:"JOBSCHED_ADDR" envDefault:":8080"`
	DBPath    string `env:"JOBSCHED_DB_PATH" envDefault:"data/jobsched.db"`
	StaticDir string `env:"JOBSCHED_STATIC_DIR" envDefault:"web/dist"`
	TimeZone  string `env:"JOBSCHED_TZ" envDefault:"Local"`

	// BackendURL points the board views at an upstream API instead of the
	// local database.
	BackendURL     string        `env:"JOBSCHED_BACKEND_URL"`
	BackendToken   string        `env:"JOBSCHED_BACKEND_TOKEN"`
	BackendTimeout time.Duration `env:"JOBSCHED_BACKEND_TIMEOUT" envDefault:"10s"`

	// JWTSecret enables bearer token identity. When empty the X-User-Email
	// header is trusted, which is only suitable for development.
	JWTSecret   string   `env:"JOBSCHED_JWT_SECRET"`
	CORSOrigins []string `env:"JOBSCHED_CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	Log Log
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		// Only the implicit .env may be absent.
		if len(files) > 0 || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves the time zone that calendar days are computed in.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
