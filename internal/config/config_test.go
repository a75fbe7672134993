// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/crewpage.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/crewpage.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.CachePrefix != "crewpage:" {
		t.Errorf("CachePrefix = %q, want %q", cfg.CachePrefix, "crewpage:")
	}
	if cfg.CacheTTL != 3600 {
		t.Errorf("CacheTTL = %d, want %d", cfg.CacheTTL, 3600)
	}
	if cfg.PublicRateLimit != 20 {
		t.Errorf("PublicRateLimit = %d, want %d", cfg.PublicRateLimit, 20)
	}
	if cfg.DoSeed {
		t.Error("DoSeed should default to false")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CREWPAGE_DB_PATH", "/custom/path.db")
	setEnv(t, "CREWPAGE_SERVER_HOST", "0.0.0.0")
	setEnv(t, "CREWPAGE_SERVER_PORT", "3000")
	setEnv(t, "CREWPAGE_ENV", "production")
	setEnv(t, "CREWPAGE_LOG_LEVEL", "debug")
	setEnv(t, "CREWPAGE_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "CREWPAGE_DO_SEED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerHost != "0.0.0.0" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "0.0.0.0")
	}
	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 3000)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %q, want %q", cfg.Env, "production")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() should be true when CREWPAGE_REDIS_URL is set")
	}
	if !cfg.DoSeed {
		t.Error("DoSeed should be true")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"too_large", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "CREWPAGE_SERVER_PORT", tt.port)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with port %s", tt.port)
			}
		})
	}
}

func TestLoad_NegativeCacheTTL(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CREWPAGE_CACHE_TTL", "-5")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail with negative cache TTL")
	}
}

func TestConfig_ServerAddr(t *testing.T) {
	cfg := Config{ServerHost: "localhost", ServerPort: 8080}
	if got := cfg.ServerAddr(); got != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", got, "localhost:8080")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	if !(Config{Env: "development"}).IsDevelopment() {
		t.Error("IsDevelopment() should be true for development")
	}
	if (Config{Env: "production"}).IsDevelopment() {
		t.Error("IsDevelopment() should be false for production")
	}
}
