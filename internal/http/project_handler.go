package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"github.com/forgehq/forge/internal/domain"
	"github.com/forgehq/forge/internal/http/middleware"
	"github.com/forgehq/forge/pkg/logger"
)

type ProjectHandler struct {
	repo   domain.ProjectRepository
	logger logger.Logger
}

func NewProjectHandler(repo domain.ProjectRepository, logger logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *ProjectHandler) RegisterRoutes(mux *http.ServeMux) {
	// Register RPC-style endpoints with dot notation
	mux.HandleFunc("/api/projects.list", h.handleList)
	mux.HandleFunc("/api/projects.get", h.handleGet)
	mux.HandleFunc("/api/projects.create", h.handleCreate)
	mux.HandleFunc("/api/projects.update", h.handleUpdate)
	mux.HandleFunc("/api/projects.delete", h.handleDelete)
}

func (h *ProjectHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projects, err := h.repo.List(r.Context(), userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list projects")
		WriteJSONError(w, "Failed to list projects", http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []*domain.Project{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
	})
}

func (h *ProjectHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projectID := r.URL.Query().Get("id")
	if projectID == "" {
		WriteJSONError(w, "Missing project ID", http.StatusBadRequest)
		return
	}
	if !govalidator.IsUUID(projectID) {
		WriteJSONError(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	project, err := h.repo.GetByID(r.Context(), projectID, userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to get project")
		WriteJSONError(w, "Failed to get project", http.StatusInternalServerError)
		return
	}
	if project == nil {
		WriteJSONError(w, "Project not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project": project,
	})
}

func (h *ProjectHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	project := &domain.Project{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatusIdle,
	}

	if err := project.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Create(r.Context(), project); err != nil {
		var dup *domain.ErrDuplicateKey
		if errors.As(err, &dup) {
			WriteJSONError(w, "Project already exists", http.StatusConflict)
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to create project")
		WriteJSONError(w, "Failed to create project", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"project": project,
	})
}

func (h *ProjectHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
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
		ID    string              `json:"id"`
		Patch domain.ProjectPatch `json:"patch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		WriteJSONError(w, "Missing project ID", http.StatusBadRequest)
		return
	}
	if !govalidator.IsUUID(req.ID) {
		WriteJSONError(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	if err := req.Patch.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	project, err := h.repo.Patch(r.Context(), req.ID, userID, &req.Patch)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to update project")
		WriteJSONError(w, "Failed to update project", http.StatusInternalServerError)
		return
	}
	if project == nil {
		WriteJSONError(w, "Project not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project": project,
	})
}

func (h *ProjectHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
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
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		WriteJSONError(w, "Missing project ID", http.StatusBadRequest)
		return
	}
	if !govalidator.IsUUID(req.ID) {
		WriteJSONError(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.repo.Delete(r.Context(), req.ID, userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to delete project")
		WriteJSONError(w, "Failed to delete project", http.StatusInternalServerError)
		return
	}
	if !deleted {
		WriteJSONError(w, "Project not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}
