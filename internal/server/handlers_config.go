package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"chatdeck/internal/confstore"
	"chatdeck/internal/logging"
)

type documentResponse struct {
	Name     string             `json:"name"`
	Path     string             `json:"path"`
	Document confstore.Document `json:"document"`
}

type saveResponse struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Saved       bool   `json:"saved"`
	Regenerated bool   `json:"regenerated"`
}

type regenerateResponse struct {
	Path string `json:"path"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !confstore.IsRecognized(name) {
		writeError(w, http.StatusNotFound, "unknown config document")
		return
	}
	doc, err := s.store.Read(name)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Name: name, Path: s.store.Path(name), Document: doc})
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	regenerate := true
	if raw := strings.TrimSpace(r.URL.Query().Get("merge")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "merge must be a boolean")
			return
		}
		regenerate = value
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}
	doc, err := confstore.Decode(formatFromContentType(r.Header.Get("Content-Type")), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.store.Save(name, doc, regenerate)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	saved := confstore.IsRecognized(name)
	s.logger.Info("config document stored",
		logging.String(logging.FieldPath, path),
		logging.Bool("saved", saved),
		logging.Bool("regenerated", saved && regenerate),
	)
	writeJSON(w, http.StatusOK, saveResponse{
		Name:        name,
		Path:        path,
		Saved:       saved,
		Regenerated: saved && regenerate,
	})
}

func (s *Server) handleRegenerate(w http.ResponseWriter, _ *http.Request) {
	path, err := s.store.RegenerateGlobal()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regenerateResponse{Path: path})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var parseErr *confstore.ParseError
	if errors.As(err, &parseErr) {
		writeError(w, http.StatusUnprocessableEntity, parseErr.Error())
		return
	}
	var encodeErr *confstore.EncodeError
	if errors.As(err, &encodeErr) {
		writeError(w, http.StatusUnprocessableEntity, encodeErr.Error())
		return
	}
	s.logger.Error("config store failure", logging.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

// formatFromContentType maps a request media type onto a document format.
// JSON is the default.
func formatFromContentType(contentType string) confstore.Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return confstore.FormatJSON
	}
	switch mediaType {
	case "application/toml", "text/toml":
		return confstore.FormatTOML
	case "application/yaml", "application/x-yaml", "text/yaml":
		return confstore.FormatYAML
	case "application/jsonc":
		return confstore.FormatJSONC
	default:
		return confstore.FormatJSON
	}
}
