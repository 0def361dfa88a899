// Package logging assembles structured slog loggers and formatting helpers used
// across ttrsync.
//
// It owns the console and JSON handlers, maps -v counts onto levels (including
// a trace level below debug), and exposes context helpers so every line of a
// sync run carries the same run_id. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
