package httpd

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mtwilk/smart-study-buddy/internal/service"
	"github.com/mtwilk/smart-study-buddy/internal/service/integration"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	ingestService   service.IngestService
	syncService     service.SyncService
	plannerService  service.PlannerService
	reminderService service.ReminderService
	agent           *service.Agent
	emailClient     integration.EmailClient
	reminderDays    int
	logger          zerolog.Logger
}

func NewHandler(
	ingestService service.IngestService,
	syncService service.SyncService,
	plannerService service.PlannerService,
	reminderService service.ReminderService,
	agent *service.Agent,
	emailClient integration.EmailClient,
	reminderDays int,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		ingestService:   ingestService,
		syncService:     syncService,
		plannerService:  plannerService,
		reminderService: reminderService,
		agent:           agent,
		emailClient:     emailClient,
		reminderDays:    reminderDays,
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/calendar", func(r chi.Router) {
			r.Post("/sync", h.PullCalendar)
			r.Post("/events", h.IngestEvent)
			r.Get("/events", h.GetAllEvents)
			r.Get("/stats", h.GetCalendarStats)
			r.Get("/unprocessed", h.GetUnprocessedDeadlines)
			r.Get("/upcoming", h.GetUpcomingDeadlines)
		})

		api.Route("/assignments", func(r chi.Router) {
			r.Post("/sync", h.SyncAssignments)
			r.Post("/{id}/sessions", h.CreateStudySessions)
			r.Get("/{id}/sessions", h.GetStudySessions)
		})

		api.Route("/agent", func(r chi.Router) {
			r.Get("/status", h.GetAgentStatus)
			r.Post("/start", h.StartAgent)
			r.Post("/stop", h.StopAgent)
		})

		api.Route("/admin", func(r chi.Router) {
			r.Post("/email/test", h.SendTestEmail)
			r.Post("/events/reset", h.ResetEventFlags)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "study-buddy",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
