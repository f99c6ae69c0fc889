package server

import (
	"errors"
	"net/http"

	"chatdeck/internal/logging"
	"chatdeck/internal/uploads"
)

const uploadField = "file"

type uploadResponse struct {
	Path string `json:"path"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, `missing form file "file"`)
		return
	}

	path, err := s.saver.Save(uploads.FromMultipart(headers[0]))
	if err != nil {
		if errors.Is(err, uploads.ErrInvalidFilename) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("upload failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Path: path})
}
