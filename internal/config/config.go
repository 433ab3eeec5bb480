// Package config loads the corkd.yml server configuration with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "24h" decode.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DatabaseConfig selects the SQL driver and its connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite3" or "postgres"
	DSN    string `yaml:"dsn"`
}

// Config represents the top-level corkd.yml configuration.
type Config struct {
	ListenAddr string         `yaml:"listen_addr"`
	Namespace  string         `yaml:"namespace"` // Redis channel namespace
	Database   DatabaseConfig `yaml:"database"`
	RedisURL   string         `yaml:"redis_url"`
	JWTSecret  string         `yaml:"jwt_secret"`
	TokenTTL   Duration       `yaml:"token_ttl"`
	CORSOrigin string         `yaml:"cors_origin"`
}

// Default returns the configuration used when no corkd.yml is present:
// an embedded sqlite database and a local Redis.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		Namespace:  "default",
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "corkd.db",
		},
		RedisURL:   "redis://localhost:6379",
		TokenTTL:   Duration(24 * time.Hour),
		CORSOrigin: "*",
	}
}

// Load reads configuration from path (defaults apply for absent fields),
// then applies CORKD_* environment overrides. An empty path skips the
// file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from CORKD_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("CORKD_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("CORKD_NAMESPACE"); v != "" {
		c.Namespace = v
	}
	if v := os.Getenv("CORKD_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("CORKD_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("CORKD_REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("CORKD_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("CORKD_CORS_ORIGIN"); v != "" {
		c.CORSOrigin = v
	}
	if v := os.Getenv("CORKD_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = Duration(d)
		}
	}
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %q (must be 'sqlite3' or 'postgres')", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("redis_url is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required (set CORKD_JWT_SECRET)")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL.Std())
	}
	return nil
}
