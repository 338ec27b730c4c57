// Package config handles resolving configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the nako-blog server.
type Config struct {
	// LogLevel is one of DEBUG, INFO, WARN or ERROR.
	LogLevel string `yaml:"log_level"`
	// WebAddress is the listen address for the web application.
	WebAddress string `yaml:"web_address"`
	// DBFilepath is the path to the SQLite database file.
	DBFilepath string `yaml:"db_filepath"`
	// RedisAddress is the host:port of the Redis session backend.
	RedisAddress string `yaml:"redis_address"`
	// SessionTTL is the idle lifetime of a session.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// AuthKeyTTL is the lifetime of the per-login ephemeral private key. It
	// must not exceed SessionTTL.
	AuthKeyTTL time.Duration `yaml:"auth_key_ttl"`
	// UploadDir is the directory uploaded files are persisted to.
	UploadDir string `yaml:"upload_dir"`
	// UploadBaseURL is the public URL prefix for uploaded files.
	UploadBaseURL string `yaml:"upload_base_url"`
	// DevMode enables request logging and debug output.
	DevMode bool `yaml:"dev_mode"`
}

// Default returns a version of the config with all default values populated.
func Default() *Config {
	return &Config{
		LogLevel:      "INFO",
		WebAddress:    "localhost:8088",
		DBFilepath:    filepath.Join(xdg.DataHome, "nako", "db.sqlite"),
		RedisAddress:  "localhost:6379",
		SessionTTL:    2 * time.Hour,
		AuthKeyTTL:    10 * time.Minute,
		UploadDir:     filepath.Join(xdg.DataHome, "nako", "upload"),
		UploadBaseURL: "/upload",
		DevMode:       false,
	}
}

// Load loads a YAML configuration file from a path, merges it with defaults,
// and validates it for completeness.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for completeness and consistency.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := logLevels[c.LogLevel]; !ok {
		errs = append(errs, fmt.Errorf("log_level must be one of DEBUG, INFO, WARN, ERROR; got %q", c.LogLevel))
	}
	if c.WebAddress == "" {
		errs = append(errs, errors.New("web_address must not be empty"))
	}
	if c.DBFilepath == "" {
		errs = append(errs, errors.New("db_filepath must not be empty"))
	}
	if c.RedisAddress == "" {
		errs = append(errs, errors.New("redis_address must not be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if c.AuthKeyTTL <= 0 || c.AuthKeyTTL > c.SessionTTL {
		errs = append(errs, errors.New("auth_key_ttl must be positive and no longer than session_ttl"))
	}
	return errors.Join(errs...)
}

// Marshal serializes the config to YAML, suitable for writing an initial
// config file.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

var logLevels = map[string]slog.Level{
	"DEBUG": slog.LevelDebug,
	"INFO":  slog.LevelInfo,
	"WARN":  slog.LevelWarn,
	"ERROR": slog.LevelError,
}

// SlogLevel resolves LogLevel to a slog.Level, defaulting to info for
// unknown values.
func (c *Config) SlogLevel() slog.Level {
	if lvl, ok := logLevels[c.LogLevel]; ok {
		return lvl
	}
	return slog.LevelInfo
}
