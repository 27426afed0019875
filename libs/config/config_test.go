package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_USER", "madaure")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "madaure")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, ActivityModeQueue, cfg.Activity.Mode)
		assert.Equal(t, "@every 1h", cfg.Scheduler.SubscriptionSweepSpec)
		assert.Equal(t, 100, cfg.RateLimit)
	})

	t.Run("custom values", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://madaure.dz, https://admin.madaure.dz ,")
		t.Setenv("ACTIVITY_MODE", "SYNC")
		t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "2h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, []string{"https://madaure.dz", "https://admin.madaure.dz"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, ActivityModeSync, cfg.Activity.Mode)
		assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpiry)
	})

	tests := []struct {
		name          string
		key           string
		value         string
		errorContains string
	}{
		{name: "missing db host", key: "DB_HOST", value: "", errorContains: "DB_HOST is required"},
		{name: "invalid db port", key: "DB_PORT", value: "abc", errorContains: "invalid DB_PORT"},
		{name: "missing jwt secret", key: "JWT_SECRET", value: "", errorContains: "JWT_SECRET is required"},
		{name: "invalid activity mode", key: "ACTIVITY_MODE", value: "carrier-pigeon", errorContains: "invalid ACTIVITY_MODE"},
		{name: "invalid expiry", key: "JWT_ACCESS_TOKEN_EXPIRY", value: "soon", errorContains: "invalid JWT_ACCESS_TOKEN_EXPIRY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 3306, User: "u", Password: "p", DBName: "madaure",
	}}

	assert.Equal(t, "u:p@tcp(db:3306)/madaure?parseTime=true&charset=utf8mb4&loc=UTC&multiStatements=true", cfg.DSN())
}

func TestLoadTest(t *testing.T) {
	t.Run("skipped without host", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "")

		cfg, err := LoadTest()

		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "127.0.0.1")
		t.Setenv("TEST_DB_PASSWORD", "secret")

		cfg, err := LoadTest()

		require.NoError(t, err)
		assert.Equal(t, "root:secret@tcp(127.0.0.1:3306)/madaure_test?parseTime=true&charset=utf8mb4&loc=UTC&multiStatements=true", cfg.DSN())
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "127.0.0.1")
		t.Setenv("TEST_DB_PORT", "x")

		_, err := LoadTest()

		require.Error(t, err)
	})
}
