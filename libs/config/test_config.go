package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTest reads the database settings of integration tests from TEST_DB_* variables
//
// Returns nil, nil when TEST_DB_HOST is not set so callers can skip.
func LoadTest() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{MigrationDir: stringEnv("MIGRATIONS_DIR", "migrations")}
	cfg.Database.Host = os.Getenv("TEST_DB_HOST")
	if cfg.Database.Host == "" {
		return nil, nil
	}

	port, err := strconv.Atoi(stringEnv("TEST_DB_PORT", "3306"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = port
	cfg.Database.User = stringEnv("TEST_DB_USER", "root")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = stringEnv("TEST_DB_NAME", "madaure_test")
	cfg.JWT.Secret = stringEnv("TEST_JWT_SECRET", "integration-secret")

	return cfg, nil
}
