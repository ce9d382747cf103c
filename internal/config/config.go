package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides for the config file.
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvDBConnection  = "DB_CONNECTION"
	EnvJWTSecret     = "JWT_SECRET"
	EnvJWTExpiry     = "JWT_EXPIRY"
	EnvAdminEmail    = "ADMIN_EMAIL"
	EnvAdminPassword = "ADMIN_PASSWORD"
)

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// defaultExpiryScanSpec runs the expiry scan every morning at 09:00.
const defaultExpiryScanSpec = "0 9 * * *"

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database.dsn` in config file or DB_CONNECTION)")

// ErrMissingJWTSecret indicates no JWT secret is configured.
var ErrMissingJWTSecret = errors.New("missing jwt secret (set `jwt.secret` in config file or JWT_SECRET)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// AdminConfig holds the bootstrap admin account credentials.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// WebAuthnConfig holds relying-party settings for passkey MFA.
type WebAuthnConfig struct {
	RPDisplayName string   `yaml:"rp-display-name"`
	RPID          string   `yaml:"rp-id"`
	RPOrigins     []string `yaml:"rp-origins"`
}

// SchedulerConfig holds cron specs for background scans.
type SchedulerConfig struct {
	ExpiryScan string `yaml:"expiry-scan"`
}

// Config is the full application configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Admin     AdminConfig     `yaml:"admin"`
	WebAuthn  WebAuthnConfig  `yaml:"webauthn"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   bool            `yaml:"metrics"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies environment overrides and
// defaults. A missing file is not an error as long as the environment
// provides the required values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
			return nil, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return nil, fmt.Errorf("read config file: %w", errRead)
	}

	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if email := strings.TrimSpace(os.Getenv(EnvAdminEmail)); email != "" {
		cfg.Admin.Email = email
	}
	if password := strings.TrimSpace(os.Getenv(EnvAdminPassword)); password != "" {
		cfg.Admin.Password = password
	}

	applyDefaults(cfg)

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, ErrMissingDatabaseDSN
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = ":8318"
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultJWTExpiry
	}
	if strings.TrimSpace(cfg.Scheduler.ExpiryScan) == "" {
		cfg.Scheduler.ExpiryScan = defaultExpiryScanSpec
	}
	if strings.TrimSpace(cfg.WebAuthn.RPDisplayName) == "" {
		cfg.WebAuthn.RPDisplayName = "EA Portal"
	}
	if strings.TrimSpace(cfg.WebAuthn.RPID) == "" {
		cfg.WebAuthn.RPID = "localhost"
	}
	if len(cfg.WebAuthn.RPOrigins) == 0 {
		cfg.WebAuthn.RPOrigins = []string{"http://localhost:8318"}
	}
}
