package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

func (h *Handler) PullCalendar(w http.ResponseWriter, r *http.Request) {
	var req models.PullCalendarRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	ctx := r.Context()
	stats, err := h.ingestService.PullCalendar(ctx, req.DaysAhead)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to pull calendar")
		writeError(w, http.StatusBadGateway, "Failed to pull calendar")
		return
	}

	writeSuccess(w, stats)
}

func (h *Handler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var raw models.RawEvent
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if raw.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if raw.StartTime == "" {
		writeError(w, http.StatusBadRequest, "start_time is required")
		return
	}

	ctx := r.Context()
	id, err := h.ingestService.Ingest(ctx, raw)
	if err != nil {
		h.logger.Error().Err(err).Str("title", raw.Title).Msg("Failed to ingest event")
		writeError(w, http.StatusInternalServerError, "Failed to ingest event")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"event_id": id,
	})
}

func (h *Handler) GetAllEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.ingestService.AllEvents(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get events")
		writeError(w, http.StatusInternalServerError, "Failed to get events")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"events": events,
		"total":  len(events),
	})
}

func (h *Handler) GetCalendarStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.ingestService.Stats(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get calendar stats")
		writeError(w, http.StatusInternalServerError, "Failed to get calendar stats")
		return
	}

	writeSuccess(w, stats)
}

func (h *Handler) GetUnprocessedDeadlines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.ingestService.UnprocessedDeadlines(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get unprocessed deadlines")
		writeError(w, http.StatusInternalServerError, "Failed to get unprocessed deadlines")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"deadlines": events,
		"total":     len(events),
	})
}

func (h *Handler) GetUpcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	daysAhead := getIntQueryParam(r, "days", h.reminderDays)

	ctx := r.Context()
	events, err := h.reminderService.Upcoming(ctx, daysAhead)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get upcoming deadlines")
		writeError(w, http.StatusInternalServerError, "Failed to get upcoming deadlines")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"deadlines":  events,
		"total":      len(events),
		"days_ahead": daysAhead,
	})
}
