package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

func (h *Handler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	if h.emailClient == nil {
		writeError(w, http.StatusServiceUnavailable, "Email is not configured")
		return
	}

	var req models.TestEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.emailClient.SendTestEmail(req.Email); err != nil {
		h.logger.Error().Err(err).Str("email", req.Email).Msg("Failed to send test email")
		writeError(w, http.StatusBadGateway, "Failed to send test email")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Test email sent",
	})
}

func (h *Handler) ResetEventFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reset, err := h.ingestService.ResetFlags(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to reset event flags")
		writeError(w, http.StatusInternalServerError, "Failed to reset event flags")
		return
	}

	writeSuccess(w, models.ResetFlagsResponse{
		EventsReset: reset,
	})
}
