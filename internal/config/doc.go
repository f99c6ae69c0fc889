// Package config loads, normalizes, and validates chatdeck runtime settings.
//
// It supplies repository defaults, reads an optional TOML settings file,
// layers CHATDECK_* environment variables (and an optional .env file) on top,
// expands user paths (including tilde shortcuts), and validates the result.
// The Config type centralizes the directories holding configuration
// fragments and uploads, the API listener, command execution, and logging.
//
// These are the settings of the helper itself. The configuration documents
// managed on behalf of the web application live in internal/confstore.
package config
