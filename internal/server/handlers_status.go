package server

import (
	"net/http"

	"chatdeck/internal/preflight"
)

type statusResponse struct {
	Ready       bool               `json:"ready"`
	ExecEnabled bool               `json:"exec_enabled"`
	Checks      []preflight.Result `json:"checks"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	results := preflight.RunAll(s.cfg)
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:       preflight.AllPassed(results),
		ExecEnabled: s.cfg.Exec.Enabled,
		Checks:      results,
	})
}
