// Package config loads postpeek settings from an optional YAML file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API   APIConfig   `yaml:"api"`
	Cache CacheConfig `yaml:"cache"`
}

// APIConfig holds the remote posts/comments API settings.
type APIConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

// CacheConfig holds the local users/posts cache settings.
type CacheConfig struct {
	Dir      string        `yaml:"dir"`
	UsersTTL time.Duration `yaml:"users_ttl"`
	PostsTTL time.Duration `yaml:"posts_ttl"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:       "https://mate.academy/students-api",
			Timeout:       10 * time.Second,
			MaxConcurrent: 8,
		},
		Cache: CacheConfig{
			Dir:      DefaultDir(),
			UsersTTL: 1 * time.Hour,
			PostsTTL: 5 * time.Minute,
		},
	}
}

// Load reads configuration from path on top of the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.MaxConcurrent == 0 {
		c.API.MaxConcurrent = defaults.API.MaxConcurrent
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = defaults.Cache.Dir
	}
	if c.Cache.UsersTTL == 0 {
		c.Cache.UsersTTL = defaults.Cache.UsersTTL
	}
	if c.Cache.PostsTTL == 0 {
		c.Cache.PostsTTL = defaults.Cache.PostsTTL
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}
	if c.API.MaxConcurrent < 1 {
		return fmt.Errorf("api.max_concurrent must be at least 1")
	}
	if c.Cache.UsersTTL < 0 || c.Cache.PostsTTL < 0 {
		return fmt.Errorf("cache ttls cannot be negative")
	}
	return nil
}

// DBPath returns the SQLite cache path.
func (c Config) DBPath() string {
	return filepath.Join(c.Cache.Dir, "cache.db")
}

// LogPath returns the default log file path.
func (c Config) LogPath() string {
	return filepath.Join(c.Cache.Dir, "postpeek.log")
}

// DefaultDir is the directory holding the cache, the log and the config file.
func DefaultDir() string {
	return filepath.Join(userConfigDir(), "postpeek")
}

// DefaultPath is the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yml")
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
