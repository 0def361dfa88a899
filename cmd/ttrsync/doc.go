// Package main hosts the ttrsync CLI entrypoint and command graph.
//
// The root command takes one or more stream names and mirrors the replays
// they list into a directory. Flags override the matching configuration
// values for a single invocation. The "config" subcommands scaffold and
// check the TOML configuration file.
//
// Keep this package lean: the pipeline lives in internal/syncer and this
// package only resolves configuration, builds the logger and renders output.
package main
