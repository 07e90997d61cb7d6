package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

type Config struct {
	DataDir       string `yaml:"-"`
	DBPath        string `yaml:"-"`
	DirectoryPath string `yaml:"-"`

	APIURL      string        `yaml:"api_url"`
	Timeout     time.Duration `yaml:"timeout"`
	CacheWindow time.Duration `yaml:"cache_window"`
	Storage     string        `yaml:"storage"`

	// OfflineFallback lets login match the local directory when the remote call fails.
	OfflineFallback bool `yaml:"offline_fallback"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// New returns the defaults rooted at dataDir.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:       dataDir,
		DBPath:        filepath.Join(dataDir, "punchclock.db"),
		DirectoryPath: filepath.Join(dataDir, "directory.yaml"),
		APIURL:        "http://localhost:3002",
		Timeout:       10 * time.Second,
		CacheWindow:   30 * time.Second,
		Storage:       StorageSQLite,
		LogLevel:      "warn",
		LogFormat:     "text",
	}, nil
}

// Load layers <dataDir>/config.yaml and PUNCHCLOCK_* env vars over the defaults.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.mergeFile(filepath.Join(dataDir, "config.yaml")); err != nil {
		return Config{}, err
	}
	cfg.mergeEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultDataDir is <user config dir>/punchclock.
func DefaultDataDir() string {
	if v := strings.TrimSpace(os.Getenv("PUNCHCLOCK_DATA_DIR")); v != "" {
		return v
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".punchclock"
	}
	return filepath.Join(base, "punchclock")
}

func (c *Config) mergeFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, c); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.APIURL = envString("PUNCHCLOCK_API_URL", c.APIURL)
	c.Timeout = envDuration("PUNCHCLOCK_TIMEOUT", c.Timeout)
	c.CacheWindow = envDuration("PUNCHCLOCK_CACHE_WINDOW", c.CacheWindow)
	c.Storage = envString("PUNCHCLOCK_STORAGE", c.Storage)
	c.OfflineFallback = envBool("PUNCHCLOCK_OFFLINE_FALLBACK", c.OfflineFallback)
	c.LogLevel = envString("PUNCHCLOCK_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envString("PUNCHCLOCK_LOG_FORMAT", c.LogFormat)
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CacheWindow < 0 {
		return fmt.Errorf("cache window must not be negative")
	}
	switch c.Storage {
	case StorageSQLite, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q (want sqlite|file|memory)", c.Storage)
	}
	return nil
}
