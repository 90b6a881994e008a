package models

// Data Transfer Objects

type PullCalendarRequest struct {
	DaysAhead int `json:"days_ahead"`
}

type PullStats struct {
	EventsFetched  int `json:"events_fetched"`
	EventsIngested int `json:"events_ingested"`
	DeadlinesFound int `json:"deadlines_found"`
}

type CalendarStats struct {
	TotalEvents          int `json:"total_events"`
	UnprocessedDeadlines int `json:"unprocessed_deadlines"`
}

type SyncRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SyncReport struct {
	CreatedAssignments []Assignment `json:"created_assignments"`
	Reminders          []Reminder   `json:"reminders"`
	AssignmentsCount   int          `json:"assignments_count"`
	RemindersCount     int          `json:"reminders_count"`
}

type CreateSessionsRequest struct {
	OwnerID string `json:"owner_id" validate:"required,uuid"`
}

type CreateSessionsResponse struct {
	SessionsCreated int `json:"sessions_created"`
}

type TestEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetFlagsResponse struct {
	EventsReset int64 `json:"events_reset"`
}

type AgentStatus struct {
	Running           bool    `json:"running"`
	LastSync          *string `json:"last_sync"`
	NotificationsSent int64   `json:"notifications_sent"`
	NextSync          *string `json:"next_sync"`
	NextCheck         *string `json:"next_check"`
}
