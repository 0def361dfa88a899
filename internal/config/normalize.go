package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	envMetadataURL = "TTRSYNC_METADATA_URL"
	envContentURL  = "TTRSYNC_CONTENT_URL"
	envDirectory   = "TTRSYNC_DIRECTORY"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServices()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := lookupEnv(envMetadataURL); ok {
		c.Metadata.BaseURL = value
	}
	if value, ok := lookupEnv(envContentURL); ok {
		c.Content.BaseURL = value
	}
	if value, ok := lookupEnv(envDirectory); ok {
		c.Sync.Directory = value
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Sync.Directory) == "" {
		c.Sync.Directory = defaultSyncDirectory
	}
	if c.Sync.Directory, err = expandPath(strings.TrimSpace(c.Sync.Directory)); err != nil {
		return fmt.Errorf("sync.directory: %w", err)
	}
	stateDir := strings.TrimSpace(c.Paths.StateDir)
	if stateDir == "" {
		stateDir = defaultStateDir
	}
	expanded, err := expandPath(stateDir)
	switch {
	case err == nil:
		c.Paths.StateDir = expanded
	case stateDir == defaultStateDir:
		c.Paths.StateDir = fallbackStateDir()
	default:
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServices() {
	c.Metadata.BaseURL = strings.TrimRight(strings.TrimSpace(c.Metadata.BaseURL), "/")
	if c.Metadata.BaseURL == "" {
		c.Metadata.BaseURL = defaultMetadataBaseURL
	}
	c.Content.BaseURL = strings.TrimRight(strings.TrimSpace(c.Content.BaseURL), "/")
	if c.Content.BaseURL == "" {
		c.Content.BaseURL = defaultContentBaseURL
	}
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
