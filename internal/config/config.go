package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Version is stamped at build time with -ldflags "-X ttrsync/internal/config.Version=...".
var Version = "dev"

// Sync contains the defaults for a sync run; CLI flags override them.
type Sync struct {
	Directory string `toml:"directory"`
	Remove    bool   `toml:"remove"`
}

// Metadata configures the replay metadata service.
type Metadata struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Content configures the replay content service.
type Content struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// BackoffSeconds is the fixed delay applied before every request once the
	// service has answered 429.
	BackoffSeconds int `toml:"backoff_seconds"`
}

// HTTP contains settings shared by both service clients.
type HTTP struct {
	UserAgent string `toml:"user_agent"`
}

// Paths contains directories ttrsync owns.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ttrsync.
type Config struct {
	Sync     Sync     `toml:"sync"`
	Metadata Metadata `toml:"metadata"`
	Content  Content  `toml:"content"`
	HTTP     HTTP     `toml:"http"`
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	// Without a home directory only the project file is considered.
	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		defaultPath = ""
	}

	if defaultPath != "" {
		if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
			return defaultPath, true, nil
		}
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	if defaultPath == "" {
		return projectPath, false, nil
	}
	return defaultPath, false, nil
}

// fallbackStateDir is used when the default state directory cannot be
// resolved because the process has no home directory.
func fallbackStateDir() string {
	return filepath.Join(os.TempDir(), "ttrsync-state")
}

// EnsureDirectories creates the directories ttrsync writes bookkeeping into.
// The sync directory itself is created by the reconciler.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.LockDir(), 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.LockDir(), err)
	}
	return nil
}

// LockDir is where per-directory run locks live.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// UserAgent returns the User-Agent sent to both services.
func (c *Config) UserAgent() string {
	if ua := strings.TrimSpace(c.HTTP.UserAgent); ua != "" {
		return ua
	}
	return "ttrsync/" + Version
}

// MetadataTimeout returns the metadata request timeout.
func (c *Config) MetadataTimeout() time.Duration {
	return time.Duration(c.Metadata.TimeoutSeconds) * time.Second
}

// ContentTimeout returns the content request timeout.
func (c *Config) ContentTimeout() time.Duration {
	return time.Duration(c.Content.TimeoutSeconds) * time.Second
}

// BackoffDelay returns the fixed rate-limit delay.
func (c *Config) BackoffDelay() time.Duration {
	return time.Duration(c.Content.BackoffSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
