// Package logging assembles structured slog loggers and formatting helpers used
// across chatdeck.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so components tag their log lines
// with the same keys. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
