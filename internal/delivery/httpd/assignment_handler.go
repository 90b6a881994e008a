package httpd

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mtwilk/smart-study-buddy/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) SyncAssignments(w http.ResponseWriter, r *http.Request) {
	var req models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	ctx := r.Context()
	report, err := h.syncService.SyncForEmail(ctx, req.Email)
	if err != nil {
		if strings.Contains(err.Error(), "no profile found") {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		h.logger.Error().Err(err).Str("email", req.Email).Msg("Failed to sync assignments")
		writeError(w, http.StatusInternalServerError, "Failed to sync assignments")
		return
	}

	writeSuccess(w, report)
}

func (h *Handler) CreateStudySessions(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	var req models.CreateSessionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	ctx := r.Context()
	created, err := h.plannerService.Plan(ctx, assignmentID, req.OwnerID)
	if err != nil {
		h.handlePlannerError(w, err)
		return
	}

	writeSuccess(w, models.CreateSessionsResponse{
		SessionsCreated: created,
	})
}

func (h *Handler) GetStudySessions(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	ctx := r.Context()
	sessions, err := h.plannerService.Sessions(ctx, assignmentID)
	if err != nil {
		h.logger.Error().Err(err).Str("assignment_id", assignmentID).Msg("Failed to get study sessions")
		writeError(w, http.StatusInternalServerError, "Failed to get study sessions")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func (h *Handler) handlePlannerError(w http.ResponseWriter, err error) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		writeError(w, http.StatusNotFound, "Assignment not found")
	default:
		h.logger.Error().Err(err).Msg("Planner service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
