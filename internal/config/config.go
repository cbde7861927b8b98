package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied for zero-valued fields at load time.
const (
	DefaultBaseURL         = "https://sellia-files.s3.us-east-2.amazonaws.com/challenge"
	DefaultCacheTTLMS      = 5 * 60 * 1000
	DefaultDismissMS       = 5 * 1000
	DefaultLoadConcurrency = 8
)

// Config is the application configuration read from config.toml.
type Config struct {
	BaseURL         string `toml:"base_url"`
	CacheTTLMS      int    `toml:"cache_ttl_ms"`
	NotifyDismissMS int    `toml:"notify_dismiss_ms"`
	LoadConcurrency int    `toml:"load_concurrency"`
	LogPath         string `toml:"log_path"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads config from the given path and fills defaults for any
// field left at its zero value. Returns an error if the file is
// missing or malformed.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.CacheTTLMS <= 0 {
		c.CacheTTLMS = DefaultCacheTTLMS
	}
	if c.NotifyDismissMS <= 0 {
		c.NotifyDismissMS = DefaultDismissMS
	}
	if c.LoadConcurrency <= 0 {
		c.LoadConcurrency = DefaultLoadConcurrency
	}
}

// CacheTTL is the directory cache validity window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// NotifyDismiss is how long notifications stay visible.
func (c *Config) NotifyDismiss() time.Duration {
	return time.Duration(c.NotifyDismissMS) * time.Millisecond
}
