package config

import "time"

type AppConfig struct {
	ListenAddr  string              `yaml:"listen_addr" env:"CLIPMOCK_LISTEN_ADDR"`
	AppEnv      string              `yaml:"app_env" env:"CLIPMOCK_APP_ENV"`
	FrontendURL string              `yaml:"frontend_url" env:"CLIPMOCK_FRONTEND_URL"`
	Auth        AuthConfig          `yaml:"auth"`
	MFA         MFAConfig           `yaml:"mfa"`
	Sync        SyncConfig          `yaml:"sync"`
	Maintenance MaintenanceConfig   `yaml:"maintenance"`
	Obs         ObservabilityConfig `yaml:"observability"`
	Security    SecurityConfig      `yaml:"security"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"CLIPMOCK_JWT_SECRET"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"CLIPMOCK_ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"CLIPMOCK_REFRESH_TOKEN_TTL"`
	OAuthClientID   string        `yaml:"oauth_client_id" env:"CLIPMOCK_OAUTH_CLIENT_ID"`
	RedirectURI     string        `yaml:"redirect_uri" env:"CLIPMOCK_REDIRECT_URI"`
	CookieSecure    bool          `yaml:"cookie_secure" env:"CLIPMOCK_COOKIE_SECURE"`
}

type MFAConfig struct {
	ExpectedCode      string        `yaml:"expected_code" env:"CLIPMOCK_MFA_EXPECTED_CODE"`
	MaxAttempts       int           `yaml:"max_attempts" env:"CLIPMOCK_MFA_MAX_ATTEMPTS"`
	LockoutDuration   time.Duration `yaml:"lockout_duration" env:"CLIPMOCK_MFA_LOCKOUT_DURATION"`
	RecoveryCodeCount int           `yaml:"recovery_code_count" env:"CLIPMOCK_MFA_RECOVERY_CODE_COUNT"`
	Issuer            string        `yaml:"issuer" env:"CLIPMOCK_MFA_ISSUER"`
}

type SyncConfig struct {
	BanCount int `yaml:"ban_count" env:"CLIPMOCK_SYNC_BAN_COUNT"`
}

type MaintenanceConfig struct {
	Enabled  bool          `yaml:"enabled" env:"CLIPMOCK_MAINTENANCE_ENABLED"`
	Schedule string        `yaml:"schedule" env:"CLIPMOCK_MAINTENANCE_SCHEDULE"`
	FlowTTL  time.Duration `yaml:"flow_ttl" env:"CLIPMOCK_MAINTENANCE_FLOW_TTL"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled" env:"CLIPMOCK_METRICS_ENABLED"`
	MetricsToken   string `yaml:"metrics_token" env:"CLIPMOCK_METRICS_TOKEN"`
}

type SecurityConfig struct {
	TrustedProxies []string `yaml:"trusted_proxies" env:"CLIPMOCK_TRUSTED_PROXIES"`
}

func (c *AppConfig) IsDev() bool {
	if c == nil {
		return false
	}
	return c.AppEnv == "dev" || c.AppEnv == "test"
}
