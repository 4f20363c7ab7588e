package http

import (
	"encoding/json"
	"net/http"

	"github.com/forgehq/forge/internal/domain"
	"github.com/forgehq/forge/internal/http/middleware"
	"github.com/forgehq/forge/pkg/logger"
)

// RunStateHandler exposes read and reset over run state. All mutation of
// run state during a session goes through the WebSocket controller; the
// only REST write is the explicit reset.
type RunStateHandler struct {
	repo   domain.RunStateRepository
	logger logger.Logger
}

func NewRunStateHandler(repo domain.RunStateRepository, logger logger.Logger) *RunStateHandler {
	return &RunStateHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *RunStateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/runStates.get", h.handleGet)
	mux.HandleFunc("/api/runStates.reset", h.handleReset)
}

func (h *RunStateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
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

	state, err := h.repo.GetByProject(r.Context(), projectID, userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to get run state")
		WriteJSONError(w, "Failed to get run state", http.StatusInternalServerError)
		return
	}
	if state == nil {
		WriteJSONError(w, "Run state not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_state": state,
	})
}

func (h *RunStateHandler) handleReset(w http.ResponseWriter, r *http.Request) {
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
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ProjectID == "" {
		WriteJSONError(w, "Missing project ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.repo.Delete(r.Context(), req.ProjectID, userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to reset run state")
		WriteJSONError(w, "Failed to reset run state", http.StatusInternalServerError)
		return
	}
	if !deleted {
		WriteJSONError(w, "Run state not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reset": true,
	})
}
