// Package main hosts the chatdeck CLI entrypoint and command graph.
//
// The Cobra command tree exposes the configuration store (show, save,
// regenerate), the upload saver, line-streamed command execution, preflight
// status and the API server. Settings resolution and logger construction are
// centralized in commandContext so subcommands only deal with their own flags.
package main
