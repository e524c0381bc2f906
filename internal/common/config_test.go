package common

import (
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 3001 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 3001)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("TASKD_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_AccessTokenExpiryDefault(t *testing.T) {
	cfg := NewDefaultConfig()
	if got := cfg.Auth.GetAccessTokenExpiry(); got != 15*time.Minute {
		t.Errorf("GetAccessTokenExpiry() = %v, want %v", got, 15*time.Minute)
	}
}

func TestConfig_AccessTokenExpiryInvalidFallsBack(t *testing.T) {
	cfg := &AuthConfig{AccessTokenExpiry: "not-a-duration"}
	if got := cfg.GetAccessTokenExpiry(); got != 15*time.Minute {
		t.Errorf("GetAccessTokenExpiry() = %v, want fallback %v", got, 15*time.Minute)
	}
}

func TestConfig_RefreshTokenExpiry(t *testing.T) {
	cfg := &AuthConfig{RefreshTokenDays: 7}
	if got := cfg.GetRefreshTokenExpiry(); got != 7*24*time.Hour {
		t.Errorf("GetRefreshTokenExpiry() = %v, want %v", got, 7*24*time.Hour)
	}

	zero := &AuthConfig{}
	if got := zero.GetRefreshTokenExpiry(); got != 7*24*time.Hour {
		t.Errorf("GetRefreshTokenExpiry() zero-value = %v, want default %v", got, 7*24*time.Hour)
	}
}

func TestConfig_JWTSecretEnvOverride(t *testing.T) {
	t.Setenv("TASKD_AUTH_JWT_SECRET", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "from-env")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.IsProduction() {
		t.Error("default config should not be production")
	}

	cfg.Environment = "Production"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for Environment=Production")
	}

	cfg.Environment = "prod"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for Environment=prod")
	}
}
