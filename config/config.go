// Package config loads tilefetch's on-disk configuration: which
// CacheBackend to construct, its connection details, and the HTTP knobs
// passed through to every Loader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheConfig selects and configures a CacheBackend.
type CacheConfig struct {
	// Backend names the backend to construct: disk, memcache, redis,
	// leveldb, badger, sqlite, or postgres.
	Backend string `yaml:"backend"`
	// Path is the filesystem path used by disk, leveldb, badger and
	// sqlite backends.
	Path string `yaml:"path"`
	// Servers addresses memcache and redis backends.
	Servers []string `yaml:"servers,omitempty"`
	// DSN is the connection string for the postgres backend.
	DSN string `yaml:"dsn,omitempty"`
	// MaxThreads is cache.jcs.max_threads: the WorkerPool's maximum size.
	// Zero selects the default (10).
	MaxThreads int `yaml:"max_threads"`
}

// HTTPConfig is the per-request network configuration passed to every
// Fetcher attempt.
type HTTPConfig struct {
	ConnectTimeoutSeconds int               `yaml:"connect_timeout"`
	ReadTimeoutSeconds    int               `yaml:"read_timeout"`
	Headers               map[string]string `yaml:"headers,omitempty"`
}

func (h HTTPConfig) ConnectTimeout() time.Duration {
	return time.Duration(h.ConnectTimeoutSeconds) * time.Second
}

func (h HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeoutSeconds) * time.Second
}

// Config is the top-level tilefetch configuration document.
type Config struct {
	Cache CacheConfig `yaml:"cache"`
	HTTP  HTTPConfig  `yaml:"http"`
	// Force submits bypass the freshness check and cache.jcs deduplication
	// short-circuit, always issuing a network request.
	Force bool `yaml:"force"`
}

// Default returns the configuration used when no config file is found.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Cache: CacheConfig{
			Backend:    "disk",
			Path:       filepath.Join(home, ".tilecache", "data"),
			MaxThreads: 10,
		},
		HTTP: HTTPConfig{
			ConnectTimeoutSeconds: 10,
			ReadTimeoutSeconds:    30,
		},
	}
}

// Path returns the default config file location, $HOME/.tilecache/config.yml.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tilecache", "config.yml")
}

// Load reads the YAML config at path, or Default() if the file does not
// exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("tilecache: read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("tilecache: parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating its parent directory if
// necessary.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("tilecache: create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("tilecache: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("tilecache: write config: %w", err)
	}
	return nil
}
