// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"CREWPAGE_DB_PATH" envDefault:"./data/crewpage.db"`
	ServerHost string `env:"CREWPAGE_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CREWPAGE_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"CREWPAGE_ENV" envDefault:"development"`
	LogLevel   string `env:"CREWPAGE_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL     string `env:"CREWPAGE_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix  string `env:"CREWPAGE_CACHE_PREFIX" envDefault:"crewpage:"` // Redis key prefix
	CacheTTL     int    `env:"CREWPAGE_CACHE_TTL" envDefault:"3600"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"CREWPAGE_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// Rate limiting for the public careers endpoints
	PublicRateLimit int `env:"CREWPAGE_PUBLIC_RATE_LIMIT" envDefault:"20"` // Requests per second per IP
	PublicRateBurst int `env:"CREWPAGE_PUBLIC_RATE_BURST" envDefault:"40"` // Burst size per IP

	// Bootstrap configuration
	BootstrapToken string `env:"CREWPAGE_BOOTSTRAP_TOKEN"`          // Service token key created on first run
	DoSeed         bool   `env:"CREWPAGE_DO_SEED" envDefault:"false"` // Enable demo data seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("CREWPAGE_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("CREWPAGE_CACHE_TTL must not be negative, got %d", cfg.CacheTTL)
	}
	if cfg.PublicRateLimit < 1 {
		return nil, fmt.Errorf("CREWPAGE_PUBLIC_RATE_LIMIT must be at least 1, got %d", cfg.PublicRateLimit)
	}

	return cfg, nil
}
