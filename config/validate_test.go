package config

import (
	"testing"
	"time"
)

func validBase() *AppConfig {
	cfg := &AppConfig{
		ListenAddr: "127.0.0.1:8080",
		AppEnv:     "dev",
	}
	normalizeConfig(cfg)
	return cfg
}

func TestValidateRejectsDefaultSecretInProd(t *testing.T) {
	cfg := validBase()
	cfg.AppEnv = "prod"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for default jwt secret in prod")
	}
}

func TestValidateAllowsDevDefaults(t *testing.T) {
	cfg := validBase()
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error for dev defaults: %v", err)
	}
}

func TestValidateRejectsShortProdSecret(t *testing.T) {
	cfg := validBase()
	cfg.AppEnv = "prod"
	cfg.Auth.JWTSecret = "short"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for short jwt secret in prod")
	}
}

func TestValidateRejectsUnknownEnv(t *testing.T) {
	cfg := validBase()
	cfg.AppEnv = "staging"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for unknown app_env")
	}
}

func TestValidateRejectsBadExpectedCode(t *testing.T) {
	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		cfg := validBase()
		cfg.MFA.ExpectedCode = code
		if err := Validate(cfg); err == nil {
			t.Fatalf("expected error for expected code %q", code)
		}
	}
}

func TestValidateRejectsInvertedTTLs(t *testing.T) {
	cfg := validBase()
	cfg.Auth.AccessTokenTTL = 2 * time.Hour
	cfg.Auth.RefreshTokenTTL = time.Hour
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for refresh ttl shorter than access ttl")
	}
}

func TestValidateRequiresMetricsTokenInProd(t *testing.T) {
	cfg := validBase()
	cfg.AppEnv = "prod"
	cfg.Auth.JWTSecret = "prod-jwt-secret-0123456789abcdef01"
	cfg.Obs.MetricsEnabled = true
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for missing metrics token in prod")
	}
	cfg.Obs.MetricsToken = "metrics-token"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error with metrics token set: %v", err)
	}
}
