package config

import (
	"testing"
	"time"
)

func TestLoadWithAliasEnv(t *testing.T) {
	t.Setenv("APP_CONFIG", "config/does-not-exist.yaml")
	t.Setenv("CLIPMOCK_LISTEN_ADDR", "127.0.0.1:8080")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "alias-jwt-secret")
	t.Setenv("FRONTEND_URL", "http://localhost:3000/")
	t.Setenv("MFA_EXPECTED_CODE", "654321")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9090" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.Auth.JWTSecret != "alias-jwt-secret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.FrontendURL != "http://localhost:3000" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.FrontendURL)
	}
	if cfg.MFA.ExpectedCode != "654321" {
		t.Fatalf("unexpected expected code: %s", cfg.MFA.ExpectedCode)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("APP_CONFIG", "config/does-not-exist.yaml")
	t.Setenv("ENV", "dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Auth.AccessTokenTTL != 900*time.Second {
		t.Fatalf("unexpected access ttl: %s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 604800*time.Second {
		t.Fatalf("unexpected refresh ttl: %s", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.MFA.ExpectedCode != "123456" {
		t.Fatalf("unexpected default code: %s", cfg.MFA.ExpectedCode)
	}
	if cfg.MFA.MaxAttempts != 5 {
		t.Fatalf("unexpected max attempts: %d", cfg.MFA.MaxAttempts)
	}
	if cfg.MFA.LockoutDuration != time.Hour {
		t.Fatalf("unexpected lockout duration: %s", cfg.MFA.LockoutDuration)
	}
	if cfg.MFA.RecoveryCodeCount != 10 {
		t.Fatalf("unexpected recovery code count: %d", cfg.MFA.RecoveryCodeCount)
	}
	if cfg.Auth.RedirectURI != cfg.FrontendURL+"/auth/callback" {
		t.Fatalf("unexpected redirect uri: %s", cfg.Auth.RedirectURI)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if !cfg.IsDev() {
		t.Fatalf("default config should be a dev-like environment, got %s", cfg.AppEnv)
	}
}
