// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (Dataset, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

The Query Engine never sees this struct; it only receives a resolved dataset
handle and the maximum page size.
*/
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/ficdex/internal/platform/constants"
)

// Supported dataset drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the explorer.
type Config struct {

	// Server settings
	Host        string `env:"HOST"         envDefault:"127.0.0.1"`
	Port        string `env:"PORT"         envDefault:"5000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Dataset location. DatabasePath is used by the sqlite driver,
	// DatabaseURL by the postgres mirror.
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabasePath   string `env:"DATABASE_PATH"   envDefault:"./data/metadata-full.sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"`

	// DatasetSourcePath is an optional mounted copy of the dataset that is
	// synced to DatabasePath before the server starts.
	DatasetSourcePath string `env:"DATASET_SOURCE_PATH"`

	// Key-Value Cache (Redis). Empty disables aggregate caching.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	// MaxPageSize bounds per_page on every search. Unset keeps
	// [constants.MaxPageSize].
	MaxPageSize int `env:"MAX_PAGE_SIZE"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Defaults shared with other packages are pre-populated; env leaves a
	// field untouched when its variable is unset.
	cfg := &Config{MaxPageSize: constants.MaxPageSize}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects combinations that cannot start a dataset connection.
func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("config: DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.MaxPageSize < 1 {
		return fmt.Errorf("config: MAX_PAGE_SIZE must be positive")
	}

	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins splits EXTRA_ORIGINS on commas, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
