package preflight

import (
	"chatdeck/internal/config"
	"chatdeck/internal/confstore"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Config directory", cfg.Paths.ConfigDir),
		CheckLazyDirectory("Uploads directory", cfg.Paths.UploadsDir),
		CheckBinary("Shell", cfg.Exec.Shell),
	}
	// Parsing only makes sense once the directory itself is usable.
	if results[0].Passed {
		results = append(results, CheckDocuments(confstore.New(cfg.Paths.ConfigDir)))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
