package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CalendarEventCollection = "calendar_events"

// CalendarEvent is the raw calendar entry mirrored into the document store.
// The classifier verdict is written once at ingestion and never re-evaluated.
type CalendarEvent struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	StartTime      string             `bson:"start_time" json:"start_time"`
	GoogleEventID  string             `bson:"google_event_id,omitempty" json:"google_event_id,omitempty"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	IsDeadline     bool               `bson:"is_deadline" json:"is_deadline"`
	DeadlineType   string             `bson:"deadline_type,omitempty" json:"deadline_type,omitempty"`
	ExamSubtype    string             `bson:"exam_subtype,omitempty" json:"exam_subtype,omitempty"`
	CourseGuess    string             `bson:"course_guess,omitempty" json:"course_guess,omitempty"`
	Processed      bool               `bson:"processed" json:"processed"`
	ProcessedAt    *time.Time         `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
	ReminderSent   bool               `bson:"reminder_sent" json:"reminder_sent"`
	ReminderSentAt *time.Time         `bson:"reminder_sent_at,omitempty" json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// RawEvent is a calendar entry as delivered by the calendar read client,
// before classification.
type RawEvent struct {
	Title         string `json:"title"`
	StartTime     string `json:"start_time"`
	GoogleEventID string `json:"google_event_id,omitempty"`
	Description   string `json:"description,omitempty"`
	Location      string `json:"location,omitempty"`
}

// BusyInterval is an existing calendar commitment used only for conflict
// checks during planning. Never persisted.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
