// Package config provides configuration management for the user service.
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds the configuration for the user service.
type Config struct {
	// Port is the port number for the user service
	Port string
	// TokenTTL is the lifetime of issued identity tokens
	TokenTTL time.Duration
}

// NewConfig creates a new Config from environment variables with defaults.
func NewConfig() *Config {
	return &Config{
		Port:     getEnv("USER_API_PORT", "3001"),
		TokenTTL: getDurationEnv("TOKEN_TTL", time.Hour),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("USER_API_PORT is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns the value of an environment variable as a duration or a default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
