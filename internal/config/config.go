// Package config resolves the selector's YAML file and environment overrides.
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

// Environment variables read by the service.
const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvPort         = "SELECTOR_PORT"
	EnvLogLevel     = "SELECTOR_LOG_LEVEL"
)

const (
	defaultConfigPath = "./config.yaml"
	defaultJWTExpiry  = 30 * 24 * time.Hour
)

// ErrMissingDatabaseDSN means neither DB_CONNECTION nor the config file names a database.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// AppConfig locates the config file.
type AppConfig struct {
	ConfigPath string
}

// JWTConfig holds the HS256 secret used to verify company tokens and the lifetime of
// tokens issued by the CLI.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// storageSection covers the database and token keys of the config file. The engine
// sections are decoded separately by LoadEngineConfig.
type storageSection struct {
	DatabaseDSN string `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT JWTConfig `yaml:"jwt"`
}

// LoadFromEnv reads CONFIG_PATH.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath makes p absolute, defaulting to ./config.yaml.
func ResolveConfigPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		p = defaultConfigPath
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func readStorageSection(configPath string) (storageSection, error) {
	var section storageSection
	data, err := os.ReadFile(configPath)
	if err != nil {
		return section, fmt.Errorf("read config file: %w", err)
	}
	if errUnmarshal := yaml.Unmarshal(data, &section); errUnmarshal != nil {
		return section, fmt.Errorf("parse config file: %w", errUnmarshal)
	}
	return section, nil
}

// LoadDatabaseDSN returns DB_CONNECTION, else `database-dsn`, else `database.dsn`.
// A readable file without either key yields ErrMissingDatabaseDSN.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}
	section, err := readStorageSection(configPath)
	if err != nil {
		return "", err
	}
	for _, dsn := range []string{section.DatabaseDSN, section.Database.DSN} {
		if dsn = strings.TrimSpace(dsn); dsn != "" {
			return dsn, nil
		}
	}
	return "", ErrMissingDatabaseDSN
}

// LoadJWTConfig reads the `jwt` section, then applies JWT_SECRET and JWT_EXPIRY. An
// unreadable file leaves token auth to the environment.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	var cfg JWTConfig
	if section, err := readStorageSection(configPath); err == nil {
		cfg = section.JWT
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.Secret = secret
	}
	if raw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); raw != "" {
		if expiry, errParse := time.ParseDuration(raw); errParse == nil && expiry > 0 {
			cfg.Expiry = expiry
		}
	}
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	if cfg.Expiry <= 0 {
		cfg.Expiry = defaultJWTExpiry
	}
	return cfg, nil
}
