package models

import (
	"time"
)

const (
	AssignmentTypeExam         = "exam"
	AssignmentTypeQuiz         = "quiz"
	AssignmentTypeEssay        = "essay"
	AssignmentTypePresentation = "presentation"
)

const (
	ExamSubtypeTheoretical = "theoretical"
	ExamSubtypePractical   = "practical"
	ExamSubtypeHybrid      = "hybrid"
)

const (
	AssignmentStatusUpcoming = "upcoming"
	SessionStatusScheduled   = "scheduled"
)

const (
	SessionFocusConcepts = "concepts"
	SessionFocusPractice = "practice"
)

// Assignment mirrors a processed deadline event in the relational store.
type Assignment struct {
	ID                  string     `json:"id" db:"id"`
	OwnerID             string     `json:"owner_id" db:"owner_id"`
	Title               string     `json:"title" db:"title"`
	Type                string     `json:"type" db:"type"`
	ExamSubtype         string     `json:"exam_subtype" db:"exam_subtype"`
	DueAt               time.Time  `json:"due_at" db:"due_at"`
	Topics              []string   `json:"topics" db:"topics"`
	Status              string     `json:"status" db:"status"`
	MaterialsUploaded   bool       `json:"materials_uploaded" db:"materials_uploaded"`
	MaterialsUploadedAt *time.Time `json:"materials_uploaded_at,omitempty" db:"materials_uploaded_at"`
	NotificationSent    bool       `json:"notification_sent" db:"notification_sent"`
	NotificationSentAt  *time.Time `json:"notification_sent_at,omitempty" db:"notification_sent_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}

// StudySession is a scheduled preparation block owned by its Assignment.
type StudySession struct {
	ID           string    `json:"id" db:"id"`
	AssignmentID string    `json:"assignment_id" db:"assignment_id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	ScheduledAt  time.Time `json:"scheduled_at" db:"scheduled_at"`
	DurationMin  int       `json:"duration_min" db:"duration_min"`
	Topics       []string  `json:"topics" db:"topics"`
	Focus        string    `json:"focus" db:"focus"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Profile struct {
	ID             string   `json:"id" db:"id"`
	Email          string   `json:"email" db:"email"`
	PreferredTimes []string `json:"preferred_times" db:"preferred_times"`
}

// Reminder is a generated nudge for an upcoming deadline event.
type Reminder struct {
	EventID   string `json:"event_id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	DaysUntil int    `json:"days_until"`
	Message   string `json:"message"`
}
