package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"ttrsync/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "ttrsync", "config.toml"); resolved != want {
		t.Fatalf("resolved path = %q, want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, ".local", "state", "ttrsync"); cfg.Paths.StateDir != want {
		t.Fatalf("state dir = %q, want %q", cfg.Paths.StateDir, want)
	}
	if !filepath.IsAbs(cfg.Sync.Directory) {
		t.Fatalf("expected absolute sync directory, got %q", cfg.Sync.Directory)
	}
	if cfg.Sync.Remove {
		t.Fatal("expected removal disabled by default")
	}
	if cfg.Metadata.BaseURL != "https://ch.tetr.io/api" || cfg.Content.BaseURL != "https://inoue.szy.lol/api" {
		t.Fatalf("unexpected service defaults: %+v %+v", cfg.Metadata, cfg.Content)
	}
	if cfg.BackoffDelay() != 5*time.Second {
		t.Fatalf("expected 5s backoff, got %s", cfg.BackoffDelay())
	}
	if !strings.HasPrefix(cfg.UserAgent(), "ttrsync/") {
		t.Fatalf("unexpected user agent %q", cfg.UserAgent())
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TTRSYNC_CONTENT_URL", "http://127.0.0.1:9999/api/")

	cfgPath := filepath.Join(tempHome, "custom.toml")
	body := `
[sync]
directory = "~/replays"
remove = true

[content]
backoff_seconds = 2

[http]
user_agent = "custom/1.0"

[logging]
format = "JSON"
level = "Trace"
`
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != cfgPath {
		t.Fatalf("expected explicit path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Sync.Directory != filepath.Join(tempHome, "replays") || !cfg.Sync.Remove {
		t.Fatalf("unexpected sync section: %+v", cfg.Sync)
	}
	if cfg.Content.BaseURL != "http://127.0.0.1:9999/api" {
		t.Fatalf("expected env override without trailing slash, got %q", cfg.Content.BaseURL)
	}
	if cfg.BackoffDelay() != 2*time.Second {
		t.Fatalf("unexpected backoff %s", cfg.BackoffDelay())
	}
	if cfg.UserAgent() != "custom/1.0" {
		t.Fatalf("unexpected user agent %q", cfg.UserAgent())
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "trace" {
		t.Fatalf("expected lowercased logging settings, got %+v", cfg.Logging)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(cfgPath, []byte("[sync]\ndirectroy = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(cfgPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "relative metadata url", mutate: func(c *config.Config) { c.Metadata.BaseURL = "/api" }},
		{name: "ftp content url", mutate: func(c *config.Config) { c.Content.BaseURL = "ftp://example.com" }},
		{name: "zero backoff", mutate: func(c *config.Config) { c.Content.BackoffSeconds = 0 }},
		{name: "negative timeout", mutate: func(c *config.Config) { c.Metadata.TimeoutSeconds = -1 }},
		{name: "unknown format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }},
		{name: "unknown level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	defaults := config.Default()
	if decoded.Content != defaults.Content || decoded.Metadata != defaults.Metadata || decoded.Logging != defaults.Logging {
		t.Fatalf("sample drifted from defaults:\n%+v\n%+v", decoded, defaults)
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample should load: %v", err)
	}
}

func TestEnsureDirectoriesCreatesLockDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.LockDir()); err != nil || !info.IsDir() {
		t.Fatalf("expected lock dir to exist: %v", err)
	}
}

func TestLoadWithoutHomeFallsBack(t *testing.T) {
	t.Setenv("HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load without HOME: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file, got %s", resolved)
	}
	if want := filepath.Join(os.TempDir(), "ttrsync-state"); cfg.Paths.StateDir != want {
		t.Fatalf("state dir = %q, want %q", cfg.Paths.StateDir, want)
	}
	if !filepath.IsAbs(resolved) || filepath.Base(resolved) != "ttrsync.toml" {
		t.Fatalf("expected project config candidate, got %q", resolved)
	}
}

func TestLoadWithoutHomeRejectsExplicitTildeStateDir(t *testing.T) {
	t.Setenv("HOME", "")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[paths]\nstate_dir = \"~/custom\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(cfgPath); err == nil {
		t.Fatal("expected error for ~ state dir without HOME")
	}
}
