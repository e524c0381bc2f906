// Package common provides shared utilities for taskd
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for taskd
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Auth        AuthConfig    `toml:"auth"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the embedded database location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// AuthConfig holds authentication configuration for Google sign-in and JWT.
type AuthConfig struct {
	JWTSecret         string       `toml:"jwt_secret"`
	AccessTokenExpiry string       `toml:"access_token_expiry"` // duration string, default "15m"
	RefreshTokenDays  int          `toml:"refresh_token_days"`  // default 7
	CleanupInterval   string       `toml:"cleanup_interval"`    // duration string, default "1h"
	RateLimit         int          `toml:"rate_limit"`          // auth requests per second, default 10
	Google            GoogleConfig `toml:"google"`
}

// GoogleConfig holds the OAuth client audience for Google ID token verification.
type GoogleConfig struct {
	ClientID string `toml:"client_id"`
	CertsURL string `toml:"certs_url"` // override for tests; default Google endpoint
}

// GetAccessTokenExpiry parses and returns the access token lifetime.
func (c *AuthConfig) GetAccessTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.AccessTokenExpiry)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetRefreshTokenExpiry returns the refresh token lifetime.
func (c *AuthConfig) GetRefreshTokenExpiry() time.Duration {
	days := c.RefreshTokenDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetCleanupInterval parses and returns the expired-token cleanup interval.
func (c *AuthConfig) GetCleanupInterval() time.Duration {
	d, err := time.ParseDuration(c.CleanupInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3001,
		},
		Storage: StorageConfig{
			Path: "data/taskd",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			JWTSecret:         "dev-jwt-secret-change-in-production",
			AccessTokenExpiry: "15m",
			RefreshTokenDays:  7,
			CleanupInterval:   "1h",
			RateLimit:         10,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TASKD_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TASKD_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TASKD_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TASKD_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("TASKD_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	// Auth overrides
	if v := os.Getenv("TASKD_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("TASKD_AUTH_ACCESS_TOKEN_EXPIRY"); v != "" {
		config.Auth.AccessTokenExpiry = v
	}
	if v := os.Getenv("TASKD_AUTH_REFRESH_TOKEN_DAYS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			config.Auth.RefreshTokenDays = d
		}
	}
	if v := os.Getenv("TASKD_AUTH_GOOGLE_CLIENT_ID"); v != "" {
		config.Auth.Google.ClientID = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
