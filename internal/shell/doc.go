// Package shell runs a command line through the host shell and exposes its
// combined stdout/stderr as a forward-only, single-pass stream of lines.
//
// A Stream must be closed. Close releases the pipe and waits for the process
// even when the consumer stopped reading early, and it reports the exit
// status; a non-zero exit is a Result, not an error.
package shell
