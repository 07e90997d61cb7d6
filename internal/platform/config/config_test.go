package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PUNCHCLOCK_API_URL", "")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://localhost:3002" || cfg.Timeout != 10*time.Second || cfg.CacheWindow != 30*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DBPath != filepath.Join(dir, "punchclock.db") {
		t.Fatalf("db path mismatch: %s", cfg.DBPath)
	}
	if cfg.OfflineFallback {
		t.Fatalf("offline fallback must be opt-in")
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	body := "api_url: https://clock.example.com\ncache_window: 45s\nstorage: file\noffline_fallback: true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PUNCHCLOCK_CACHE_WINDOW", "5s")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "https://clock.example.com" {
		t.Fatalf("api url from file not applied: %s", cfg.APIURL)
	}
	if cfg.CacheWindow != 5*time.Second {
		t.Fatalf("env override not applied: %v", cfg.CacheWindow)
	}
	if cfg.Storage != StorageFile || !cfg.OfflineFallback {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []func(*Config){
		func(c *Config) { c.APIURL = "ftp://x" },
		func(c *Config) { c.Timeout = 0 },
		func(c *Config) { c.Storage = "redis" },
	}
	for i, mutate := range cases {
		cfg := base
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestNewRequiresDataDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
}
