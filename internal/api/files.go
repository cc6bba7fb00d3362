package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"medialinks-backend/internal/files"
	"medialinks-backend/internal/logging"
	"medialinks-backend/internal/models"
)

// FileService is the request flow behind the file routes.
type FileService interface {
	ListAll(ctx context.Context) ([]models.FolderListing, error)
	Link(ctx context.Context, folder, fileName string) (*models.FileLink, error)
}

type FileHandler struct {
	service FileService
}

func NewFileHandler(service FileService) *FileHandler {
	return &FileHandler{service: service}
}

func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListAll(r.Context())
	if err != nil {
		http.Error(w, "failed to list files", http.StatusInternalServerError)
		return
	}

	resp := make(map[string][]models.FileRecord, len(listings))
	for _, l := range listings {
		resp[l.Key] = l.Files
	}

	writeJSON(w, r, resp)
}

func (h *FileHandler) GetFileLink(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	fileName := chi.URLParam(r, "fileName")

	link, err := h.service.Link(r.Context(), folder, fileName)
	switch {
	case err == nil:
		writeJSON(w, r, link)
	case errors.Is(err, files.ErrUnknownFolder):
		http.Error(w, "folder not found", http.StatusNotFound)
	case errors.Is(err, files.ErrInvalidFileName):
		http.Error(w, "invalid file name", http.StatusBadRequest)
	default:
		logging.WithContext(r.Context()).Error("single link failed",
			zap.String("folder", folder),
			zap.String("file", fileName),
			zap.Error(err),
		)
		http.Error(w, "failed to generate download link", http.StatusInternalServerError)
	}
}

// Welcome serves a fixed text body.
func Welcome(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(message))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WithContext(r.Context()).Warn("failed to write response", zap.Error(err))
	}
}
