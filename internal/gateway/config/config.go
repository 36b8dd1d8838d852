// Package config provides configuration management for the gateway.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the gateway.
type Config struct {
	// Port is the port number for the gateway
	Port string
	// UserServiceURL is the URL of the user REST service
	UserServiceURL string
	// TaskServiceURL is the URL of the task GraphQL service
	TaskServiceURL string
	// KeyFetchInterval is the delay between verification key fetch retries
	KeyFetchInterval time.Duration
	// AllowedOrigins lists origins allowed by the CORS policy
	AllowedOrigins []string
	// RateLimitRPS is the per-IP request rate allowed per second
	RateLimitRPS float64
	// RateLimitBurst is the per-IP burst size
	RateLimitBurst int
}

// NewConfig creates a new Config from environment variables with defaults.
func NewConfig() *Config {
	return &Config{
		Port:             getEnv("GATEWAY_PORT", "3000"),
		UserServiceURL:   getEnv("USER_SERVICE_URL", "http://localhost:3001"),
		TaskServiceURL:   getEnv("TASK_SERVICE_URL", "http://localhost:4000"),
		KeyFetchInterval: getDurationEnv("KEY_FETCH_INTERVAL", 5*time.Second),
		AllowedOrigins:   getListEnv("ALLOWED_ORIGINS", []string{"http://localhost:3002"}),
		RateLimitRPS:     getFloatEnv("RATE_LIMIT_RPS", 10),
		RateLimitBurst:   getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("GATEWAY_PORT is required")
	}
	if c.UserServiceURL == "" {
		return errors.New("USER_SERVICE_URL is required")
	}
	if c.TaskServiceURL == "" {
		return errors.New("TASK_SERVICE_URL is required")
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

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
