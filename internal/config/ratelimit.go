package config

import (
	"fmt"
	"time"
)

// RateLimitConfig holds per-client request throttling settings for the
// HTTP API.
type RateLimitConfig struct {
	// Requests is the number of requests allowed per Window.
	Requests int
	// Window is the interval over which Requests is counted.
	Window time.Duration
}

// LoadRateLimitConfigFromEnv loads rate limit configuration from
// environment variables.
func LoadRateLimitConfigFromEnv() RateLimitConfig {
	return RateLimitConfig{
		Requests: GetEnvInt("RATE_LIMIT_REQUESTS", 120),
		Window:   GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

// Validate validates rate limit configuration.
func (c RateLimitConfig) Validate() error {
	if c.Requests <= 0 {
		return fmt.Errorf("rate limit requests must be positive, got %d", c.Requests)
	}

	if c.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %v", c.Window)
	}

	return nil
}
