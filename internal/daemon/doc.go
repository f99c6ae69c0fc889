// Package daemon coordinates the long-running "chatdeck serve" process.
//
// It owns the API server lifecycle and a flock-based lock at
// <config_dir>/chatdeck.lock that keeps a second server from running against
// the same configuration directory. The lock guards the process, not the
// documents: writers of partial and global files are never serialized.
package daemon
