package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"chatdeck/internal/logging"
)

type execRequest struct {
	Command string `json:"command"`
}

// execEvent is one NDJSON record. Output lines carry Line; the final record
// carries Done with the exit code, or Error when the command could not be
// waited for.
type execEvent struct {
	Line       *string `json:"line,omitempty"`
	Done       bool    `json:"done,omitempty"`
	ExitCode   *int    `json:"exit_code,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Exec.Enabled {
		writeError(w, http.StatusForbidden, "command execution disabled")
		return
	}

	var req execRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := s.runner.Check(req.Command); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	stream, err := s.runner.Start(r.Context(), req.Command)
	if err != nil {
		s.logger.Error("exec start failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	encoder := json.NewEncoder(w)
	for line := range stream.Lines() {
		if err := encoder.Encode(execEvent{Line: &line}); err != nil {
			// Client went away; Close reaps the command.
			break
		}
		flusher.Flush()
	}

	result, err := stream.Close()
	final := execEvent{Done: true, DurationMS: result.Duration.Milliseconds()}
	switch {
	case err != nil:
		final.Error = err.Error()
	case stream.Err() != nil:
		final.Error = stream.Err().Error()
		final.ExitCode = &result.ExitCode
	default:
		final.ExitCode = &result.ExitCode
	}
	_ = encoder.Encode(final)
	flusher.Flush()

	s.logger.Info("command streamed",
		logging.String(logging.FieldRunID, stream.ID()),
		logging.String("command", strings.TrimSpace(req.Command)),
		logging.Int("exit_code", result.ExitCode),
	)
}
