package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	defaultConfigPath = "config/app.yaml"
	envPrefix         = "CLIPMOCK_"
)

func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfgPath := resolveConfigPath()
	if st, err := os.Stat(cfgPath); err == nil && !st.IsDir() {
		if err := cleanenv.ReadConfig(cfgPath, cfg); err != nil {
			return nil, err
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	applyEnvAliases(cfg)
	normalizeConfig(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config suitable for in-process test servers: dev
// environment, ephemeral listen address, deterministic MFA policy.
func Default() *AppConfig {
	cfg := &AppConfig{
		ListenAddr: "127.0.0.1:0",
		AppEnv:     "test",
	}
	normalizeConfig(cfg)
	return cfg
}

func applyEnvAliases(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	if v := getEnv("ENV", "APP_ENV"); v != "" {
		cfg.AppEnv = strings.TrimSpace(v)
	}
	if v := getEnv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = strings.TrimSpace(v)
	}
	if v := getEnv("FRONTEND_URL"); v != "" {
		cfg.FrontendURL = strings.TrimSpace(v)
	}
	if v := getEnv("MFA_EXPECTED_CODE"); v != "" {
		cfg.MFA.ExpectedCode = strings.TrimSpace(v)
	}
	if v := getEnv("METRICS_TOKEN"); v != "" {
		cfg.Obs.MetricsToken = strings.TrimSpace(v)
	}
	if v := getEnv("PORT", envPrefix+"PORT"); v != "" {
		cfg.ListenAddr = listenAddrWithPort(cfg.ListenAddr, v)
	}
}

func normalizeConfig(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.FrontendURL = strings.TrimRight(strings.TrimSpace(cfg.FrontendURL), "/")
	cfg.Auth.JWTSecret = strings.TrimSpace(cfg.Auth.JWTSecret)
	cfg.Auth.OAuthClientID = strings.TrimSpace(cfg.Auth.OAuthClientID)
	cfg.Auth.RedirectURI = strings.TrimSpace(cfg.Auth.RedirectURI)
	cfg.MFA.ExpectedCode = strings.TrimSpace(cfg.MFA.ExpectedCode)
	cfg.MFA.Issuer = strings.TrimSpace(cfg.MFA.Issuer)
	cfg.Maintenance.Schedule = strings.TrimSpace(cfg.Maintenance.Schedule)
	cfg.Obs.MetricsToken = strings.TrimSpace(cfg.Obs.MetricsToken)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "0.0.0.0:8080"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:5173"
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = defaultJWTSecret
	}
	if cfg.Auth.AccessTokenTTL <= 0 {
		cfg.Auth.AccessTokenTTL = 900 * time.Second
	}
	if cfg.Auth.RefreshTokenTTL <= 0 {
		cfg.Auth.RefreshTokenTTL = 604800 * time.Second
	}
	if cfg.Auth.OAuthClientID == "" {
		cfg.Auth.OAuthClientID = "mock-client-id"
	}
	if cfg.Auth.RedirectURI == "" {
		cfg.Auth.RedirectURI = cfg.FrontendURL + "/auth/callback"
	}
	if cfg.MFA.ExpectedCode == "" {
		cfg.MFA.ExpectedCode = "123456"
	}
	if cfg.MFA.MaxAttempts <= 0 {
		cfg.MFA.MaxAttempts = 5
	}
	if cfg.MFA.LockoutDuration <= 0 {
		cfg.MFA.LockoutDuration = time.Hour
	}
	if cfg.MFA.RecoveryCodeCount <= 0 {
		cfg.MFA.RecoveryCodeCount = 10
	}
	if cfg.MFA.Issuer == "" {
		cfg.MFA.Issuer = "Clipper"
	}
	if cfg.Sync.BanCount <= 0 {
		cfg.Sync.BanCount = 3
	}
	if cfg.Maintenance.Schedule == "" {
		cfg.Maintenance.Schedule = "@every 1m"
	}
	if cfg.Maintenance.FlowTTL <= 0 {
		cfg.Maintenance.FlowTTL = 10 * time.Minute
	}
}

func getEnv(keys ...string) string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func resolveConfigPath() string {
	if v := getEnv("APP_CONFIG", envPrefix+"APP_CONFIG"); v != "" {
		return strings.TrimSpace(v)
	}
	return defaultConfigPath
}

func listenAddrWithPort(currentAddr, portRaw string) string {
	port := strings.TrimSpace(portRaw)
	if port == "" {
		return currentAddr
	}
	if _, err := strconv.Atoi(port); err != nil {
		return currentAddr
	}
	host := "0.0.0.0"
	parts := strings.Split(strings.TrimSpace(currentAddr), ":")
	if len(parts) > 1 {
		host = strings.Join(parts[:len(parts)-1], ":")
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host + ":" + port
}
