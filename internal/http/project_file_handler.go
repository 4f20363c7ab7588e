package http

import (
	"encoding/json"
	"net/http"

	"github.com/forgehq/forge/internal/domain"
	"github.com/forgehq/forge/internal/http/middleware"
	"github.com/forgehq/forge/pkg/logger"
)

type ProjectFileHandler struct {
	repo   domain.ProjectFileRepository
	logger logger.Logger
}

func NewProjectFileHandler(repo domain.ProjectFileRepository, logger logger.Logger) *ProjectFileHandler {
	return &ProjectFileHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *ProjectFileHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/files.list", h.handleList)
	mux.HandleFunc("/api/files.get", h.handleGet)
	mux.HandleFunc("/api/files.upsert", h.handleUpsert)
	mux.HandleFunc("/api/files.bulkUpsert", h.handleBulkUpsert)
	mux.HandleFunc("/api/files.delete", h.handleDelete)
}

func (h *ProjectFileHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		WriteJSONError(w, "Missing project ID", http.StatusBadRequest)
		return
	}

	files, err := h.repo.ListByProject(r.Context(), projectID, userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list project files")
		WriteJSONError(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []*domain.ProjectFile{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"files": files,
	})
}

func (h *ProjectFileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projectID := r.URL.Query().Get("project_id")
	path := r.URL.Query().Get("path")
	if projectID == "" || path == "" {
		WriteJSONError(w, "Missing project ID or path", http.StatusBadRequest)
		return
	}

	file, err := h.repo.Get(r.Context(), userID, projectID, path)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to get project file")
		WriteJSONError(w, "Failed to get file", http.StatusInternalServerError)
		return
	}
	if file == nil {
		WriteJSONError(w, "File not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"file": file,
	})
}

func (h *ProjectFileHandler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input domain.FileUpsert
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := input.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, err := h.repo.Upsert(r.Context(), userID, input)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to upsert project file")
		WriteJSONError(w, "Failed to upsert file", http.StatusInternalServerError)
		return
	}
	if file == nil {
		WriteJSONError(w, "Project not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"file": file,
	})
}

func (h *ProjectFileHandler) handleBulkUpsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Files []domain.FileUpsert `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for _, input := range req.Files {
		if err := input.Validate(); err != nil {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	count, err := h.repo.BulkUpsert(r.Context(), userID, req.Files)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to bulk upsert project files")
		WriteJSONError(w, "Failed to upsert files", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": count,
	})
}

func (h *ProjectFileHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ProjectID string `json:"project_id"`
		Path      string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ProjectID == "" || req.Path == "" {
		WriteJSONError(w, "Missing project ID or path", http.StatusBadRequest)
		return
	}

	deleted, err := h.repo.Delete(r.Context(), userID, req.ProjectID, req.Path)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to delete project file")
		WriteJSONError(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}
	if !deleted {
		WriteJSONError(w, "File not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}
