package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := validateBaseURL("metadata.base_url", c.Metadata.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("content.base_url", c.Content.BaseURL); err != nil {
		return err
	}
	if c.Metadata.TimeoutSeconds <= 0 {
		return errors.New("metadata.timeout_seconds must be positive")
	}
	if c.Content.TimeoutSeconds <= 0 {
		return errors.New("content.timeout_seconds must be positive")
	}
	if c.Content.BackoffSeconds <= 0 {
		return errors.New("content.backoff_seconds must be positive")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func validateBaseURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
