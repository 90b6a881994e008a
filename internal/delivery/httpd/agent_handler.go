package httpd

import (
	"net/http"
)

func (h *Handler) GetAgentStatus(w http.ResponseWriter, r *http.Request) {
	if h.agent == nil {
		writeError(w, http.StatusServiceUnavailable, "Agent is not configured")
		return
	}

	writeSuccess(w, h.agent.Status())
}

func (h *Handler) StartAgent(w http.ResponseWriter, r *http.Request) {
	if h.agent == nil {
		writeError(w, http.StatusServiceUnavailable, "Agent is not configured")
		return
	}

	if err := h.agent.Start(); err != nil {
		h.logger.Error().Err(err).Msg("Failed to start agent")
		writeError(w, http.StatusInternalServerError, "Failed to start agent")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Agent started",
	})
}

func (h *Handler) StopAgent(w http.ResponseWriter, r *http.Request) {
	if h.agent == nil {
		writeError(w, http.StatusServiceUnavailable, "Agent is not configured")
		return
	}

	h.agent.Stop()

	writeSuccess(w, map[string]interface{}{
		"message": "Agent stopped",
	})
}
