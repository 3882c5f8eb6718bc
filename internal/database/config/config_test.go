package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearDBEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_PORT", "DB_SSLMODE", "DB_TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		clearDBEnv(t)

		cfg := LoadConfigFromEnv()
		assert.Equal(t, Config{
			Host:     "localhost",
			User:     "postgres",
			Password: "postgres",
			DBName:   "tiktok_league",
			Port:     "5432",
			SSLMode:  "disable",
			TimeZone: "UTC",
		}, cfg)
	})

	t.Run("custom values", func(t *testing.T) {
		clearDBEnv(t)
		t.Setenv("DB_HOST", "league-db")
		t.Setenv("DB_USER", "league_admin")
		t.Setenv("DB_PASSWORD", "s3cret")
		t.Setenv("DB_NAME", "league_prod")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("DB_SSLMODE", "require")
		t.Setenv("DB_TIMEZONE", "Europe/Madrid")

		cfg := LoadConfigFromEnv()
		assert.Equal(t, Config{
			Host:     "league-db",
			User:     "league_admin",
			Password: "s3cret",
			DBName:   "league_prod",
			Port:     "5433",
			SSLMode:  "require",
			TimeZone: "Europe/Madrid",
		}, cfg)
	})

	t.Run("partial override keeps other defaults", func(t *testing.T) {
		clearDBEnv(t)
		t.Setenv("DB_HOST", "league-db")
		t.Setenv("DB_PORT", "9999")

		cfg := LoadConfigFromEnv()
		assert.Equal(t, "league-db", cfg.Host)
		assert.Equal(t, "9999", cfg.Port)
		assert.Equal(t, "postgres", cfg.User)
		assert.Equal(t, "tiktok_league", cfg.DBName)
	})
}

func TestBuildDSN(t *testing.T) {
	cfg := Config{
		Host:     "db.league.internal",
		User:     "league_admin",
		Password: "s3cret",
		DBName:   "league_prod",
		Port:     "5433",
		SSLMode:  "require",
		TimeZone: "Europe/Madrid",
	}

	dsn := BuildDSN(cfg)
	assert.Equal(t,
		"host=db.league.internal user=league_admin password=s3cret "+
			"dbname=league_prod port=5433 sslmode=require TimeZone=Europe/Madrid",
		dsn)
}

func TestSanitizeError(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		User:     "league",
		Password: "s3cret",
		DBName:   "league",
		Port:     "5432",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	t.Run("nil error stays nil", func(t *testing.T) {
		assert.Nil(t, SanitizeError(nil, cfg))
	})

	t.Run("masks password", func(t *testing.T) {
		err := fmt.Errorf("connection failed: host=localhost user=league password=s3cret dbname=league")

		result := SanitizeError(err, cfg)
		require.Error(t, result)
		assert.Contains(t, result.Error(), "failed to connect to database")
		assert.Contains(t, result.Error(), "password=***")
		assert.NotContains(t, result.Error(), "s3cret")
	})

	t.Run("masks full DSN", func(t *testing.T) {
		err := fmt.Errorf("failed to connect to `%s`", BuildDSN(cfg))

		result := SanitizeError(err, cfg)
		require.Error(t, result)
		assert.Contains(t, result.Error(), "password=***")
		assert.NotContains(t, result.Error(), "s3cret")
	})
}

func TestLoadRetryConfigFromEnv(t *testing.T) {
	t.Run("postgres defaults", func(t *testing.T) {
		t.Setenv("DB_RETRY_MAX_ATTEMPTS", "")
		t.Setenv("DB_RETRY_INITIAL_DELAY", "")
		t.Setenv("DB_RETRY_MAX_DELAY", "")
		t.Setenv("DB_RETRY_MULTIPLIER", "")

		cfg := LoadRetryConfigFromEnv()
		assert.Equal(t, 5, cfg.MaxAttempts)
		assert.Contains(t, cfg.RetryableErrors, "connection refused")
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("DB_RETRY_MAX_ATTEMPTS", "2")
		t.Setenv("DB_RETRY_INITIAL_DELAY", "50ms")
		t.Setenv("DB_RETRY_MAX_DELAY", "2s")
		t.Setenv("DB_RETRY_MULTIPLIER", "1.5")

		cfg := LoadRetryConfigFromEnv()
		assert.Equal(t, 2, cfg.MaxAttempts)
		assert.Equal(t, 50*time.Millisecond, cfg.InitialDelay)
		assert.Equal(t, 2*time.Second, cfg.MaxDelay)
		assert.Equal(t, 1.5, cfg.Multiplier)
	})
}
