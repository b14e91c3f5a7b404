package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by the loader. Each overrides the
// corresponding config file field.
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvBind          = "BIND"
	EnvDBConnection  = "DB_CONNECTION"
	EnvSessionSecret = "SESSION_SECRET"
	EnvSessionExpiry = "SESSION_EXPIRY"
	EnvBcryptCost    = "BCRYPT_COST"
)

// Defaults applied when neither the config file nor the environment
// provides a value.
const (
	defaultBind          = "127.0.0.1:8484"
	defaultDSN           = "heracles.db"
	defaultSessionExpiry = 14 * 24 * time.Hour
)

// OAuthProvider holds the client settings for one OAuth identity provider.
type OAuthProvider struct {
	ClientID     string `yaml:"client-id"`
	ClientSecret string `yaml:"client-secret"`
	RedirectURL  string `yaml:"redirect-url"`
	AllowSignup  bool   `yaml:"allow-signup"` // Auto-provision passwordless users on first login.
}

// Enabled reports whether the provider is configured for use.
func (p OAuthProvider) Enabled() bool {
	return strings.TrimSpace(p.ClientID) != "" && strings.TrimSpace(p.ClientSecret) != ""
}

// RadiusConfig holds the optional RADIUS listener settings.
type RadiusConfig struct {
	Bind   string `yaml:"bind"` // e.g. ":1812"; empty disables the listener.
	Secret string `yaml:"secret"`
}

// Enabled reports whether the RADIUS listener should start.
func (r RadiusConfig) Enabled() bool {
	return strings.TrimSpace(r.Bind) != "" && strings.TrimSpace(r.Secret) != ""
}

// SessionConfig holds the signing settings for session cookie tokens.
type SessionConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// Config is the resolved process configuration.
type Config struct {
	Bind        string        `yaml:"bind"`
	DatabaseDSN string        `yaml:"database-dsn"`
	Session     SessionConfig `yaml:"session"`
	BcryptCost  int           `yaml:"bcrypt-cost"`

	Github  OAuthProvider `yaml:"github"`
	Discord OAuthProvider `yaml:"discord"`
	Radius  RadiusConfig  `yaml:"radius"`
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

// Load reads the YAML config file at path (missing files are fine) and
// applies environment overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(path)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("read config file: %w", errRead)
	}

	if bind := strings.TrimSpace(os.Getenv(EnvBind)); bind != "" {
		cfg.Bind = bind
	}
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvSessionSecret)); secret != "" {
		cfg.Session.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvSessionExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.Session.Expiry = expiry
		}
	}
	if costRaw := strings.TrimSpace(os.Getenv(EnvBcryptCost)); costRaw != "" {
		if cost, errParse := strconv.Atoi(costRaw); errParse == nil {
			cfg.BcryptCost = cost
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Bind) == "" {
		c.Bind = defaultBind
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		c.DatabaseDSN = defaultDSN
	}
	if c.Session.Expiry <= 0 {
		c.Session.Expiry = defaultSessionExpiry
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		c.BcryptCost = bcrypt.DefaultCost
	}
}
