// Package config provides configuration management for the task service.
package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds the configuration for the task service.
type Config struct {
	// Port is the port number for the task service
	Port string
	// BusBuffer is the per-subscription event buffer size
	BusBuffer int
}

// NewConfig creates a new Config from environment variables with defaults.
func NewConfig() *Config {
	return &Config{
		Port:      getEnv("TASK_API_PORT", "4000"),
		BusBuffer: getIntEnv("BUS_BUFFER", 16),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("TASK_API_PORT is required")
	}
	if c.BusBuffer <= 0 {
		return errors.New("BUS_BUFFER must be positive")
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

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
