package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", config.Server.Port)
	}
	if config.Database.Name != "taskify" {
		t.Errorf("Expected default database name taskify, got %s", config.Database.Name)
	}
	if config.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Expected default access token TTL of 15m, got %v", config.Auth.AccessTokenTTL)
	}
	if config.Paging.DefaultLimit != 20 {
		t.Errorf("Expected default page limit 20, got %d", config.Paging.DefaultLimit)
	}
	if config.Paging.MaxLimit != 100 {
		t.Errorf("Expected max page limit 100, got %d", config.Paging.MaxLimit)
	}
	if len(config.Worker.Queues) == 0 {
		t.Error("Expected at least one worker queue")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", config.Server.Port)
	}
	if config.Database.MaxOpenConns != 50 {
		t.Errorf("Expected 50 max open conns, got %d", config.Database.MaxOpenConns)
	}
	if config.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("Expected access token TTL of 30m, got %v", config.Auth.AccessTokenTTL)
	}
	if config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be disabled")
	}
}

func TestLoadConfig_InvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-duration")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Database.MaxOpenConns != 25 {
		t.Errorf("Expected fallback of 25 max open conns, got %d", config.Database.MaxOpenConns)
	}
	if config.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Expected fallback TTL of 15m, got %v", config.Auth.AccessTokenTTL)
	}
}

func TestLoadConfig_ProductionGuards(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for missing production credentials")
	}

	t.Setenv("DB_PASSWORD", "secret")
	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for default JWT secret in production")
	}

	t.Setenv("JWT_SECRET", "real-secret")
	if _, err := LoadConfig(); err != nil {
		t.Errorf("Expected production config to load, got %v", err)
	}
}

func TestConfig_DSNAndAddrs(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	dsn := config.GetDatabaseDSN()
	if dsn == "" {
		t.Error("Expected non-empty DSN")
	}

	if config.GetRedisAddr() != "localhost:6379" {
		t.Errorf("Expected redis addr localhost:6379, got %s", config.GetRedisAddr())
	}
	if config.GetServerAddr() != "localhost:8080" {
		t.Errorf("Expected server addr localhost:8080, got %s", config.GetServerAddr())
	}
	if config.IsProduction() {
		t.Error("Expected development environment by default")
	}
}

func TestLoadConfig_InvalidPagingDefaults(t *testing.T) {
	t.Setenv("PAGE_DEFAULT_LIMIT", "500")
	t.Setenv("PAGE_MAX_LIMIT", "100")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when default limit exceeds max limit")
	}
}
