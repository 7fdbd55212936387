package config

import (
	"fmt"
	"strings"
)

const defaultJWTSecret = "mock-jwt-secret-do-not-use-in-prod"

func Validate(cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	appEnv := strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	switch appEnv {
	case "dev", "test", "prod":
	default:
		return fmt.Errorf("unsupported app_env: %s", cfg.AppEnv)
	}
	if appEnv == "prod" {
		if cfg.Auth.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("default jwt_secret is not allowed outside APP_ENV=dev")
		}
		if len(cfg.Auth.JWTSecret) < 32 {
			return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
		}
	}
	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("auth token TTLs must be positive")
	}
	if cfg.Auth.RefreshTokenTTL < cfg.Auth.AccessTokenTTL {
		return fmt.Errorf("auth.refresh_token_ttl must not be shorter than access_token_ttl")
	}
	if len(cfg.MFA.ExpectedCode) != 6 {
		return fmt.Errorf("mfa.expected_code must be exactly 6 digits")
	}
	for _, r := range cfg.MFA.ExpectedCode {
		if r < '0' || r > '9' {
			return fmt.Errorf("mfa.expected_code must be exactly 6 digits")
		}
	}
	if cfg.Obs.MetricsEnabled && appEnv == "prod" && strings.TrimSpace(cfg.Obs.MetricsToken) == "" {
		return fmt.Errorf("observability.metrics_token must be set when metrics are enabled outside APP_ENV=dev")
	}
	return nil
}
