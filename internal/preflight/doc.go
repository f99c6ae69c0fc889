// Package preflight provides readiness checks for the filesystem paths and
// binaries chatdeck depends on.
//
// These checks run in two contexts:
//   - The CLI "chatdeck status" command renders RunAll as a table.
//   - The API server exposes the same results on GET /api/status.
package preflight
