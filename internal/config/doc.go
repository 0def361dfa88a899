// Package config loads, normalizes, and validates ttrsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours TTRSYNC_* environment overrides for
// the service URLs and sync directory. Command-line flags are layered on top by
// the CLI; this package only knows about files and the environment.
package config
