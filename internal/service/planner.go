package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/config"
	"github.com/mtwilk/smart-study-buddy/internal/models"
	"github.com/mtwilk/smart-study-buddy/internal/repository"
	"github.com/mtwilk/smart-study-buddy/internal/service/integration"
)

const studyEventColorID = "7"

// SessionPlan is one computed preparation slot, before persistence.
type SessionPlan struct {
	ScheduledAt time.Time
	DurationMin int
	Focus       string
}

// BusyLookup supplies the busy intervals for a day during planning. A nil
// lookup means no busy-interval source is available: conflict search is
// skipped and the clamped preferred hour is used directly.
type BusyLookup func(day time.Time) []models.BusyInterval

// SessionsNeeded is the session-count policy: one session fewer than the
// days available, at least one, capped by assignment type.
func SessionsNeeded(assignmentType string, daysUntilDue int) int {
	base := daysUntilDue - 1
	if base < 1 {
		base = 1
	}

	var limit int
	switch assignmentType {
	case models.AssignmentTypeExam:
		limit = 5
	case models.AssignmentTypeQuiz:
		limit = 2
	default:
		limit = 3
	}

	if base > limit {
		return limit
	}
	return base
}

// ComputeSessions lays out the study plan for an assignment: how many
// sessions, on which days, with which focus, at which hour. Pure apart from
// the busy lookup.
//
// Sessions spread across the window with day offset floor((D-1)*i/(N-1)),
// so the first lands today and the last on the day before the deadline.
// The first half of the sessions build understanding (concepts), the rest
// drill (practice).
func ComputeSessions(assignment *models.Assignment, now time.Time, preferredHour, durationMin, minHour, maxHour int, lookup BusyLookup) []SessionPlan {
	daysUntilDue := wholeDaysUntil(now, assignment.DueAt)
	needed := SessionsNeeded(assignment.Type, daysUntilDue)

	plans := make([]SessionPlan, 0, needed)

	for i := 0; i < needed; i++ {
		dayOffset := 0
		if needed > 1 && daysUntilDue > 1 {
			dayOffset = (daysUntilDue - 1) * i / (needed - 1)
		}

		day := now.AddDate(0, 0, dayOffset)

		var scheduledAt time.Time
		if lookup != nil {
			scheduledAt = FindSlot(day, preferredHour, durationMin, lookup(day), minHour, maxHour)
		} else {
			scheduledAt = atHour(day, ClampHour(preferredHour, durationMin, minHour, maxHour))
		}

		progress := float64(i)
		if needed > 1 {
			progress = float64(i) / float64(needed-1)
		}

		focus := models.SessionFocusConcepts
		if progress >= 0.5 {
			focus = models.SessionFocusPractice
		}

		plans = append(plans, SessionPlan{
			ScheduledAt: scheduledAt,
			DurationMin: durationMin,
			Focus:       focus,
		})
	}

	return plans
}

type PlannerService interface {
	Plan(ctx context.Context, assignmentID, ownerID string) (int, error)
	Sessions(ctx context.Context, assignmentID string) ([]models.StudySession, error)
}

type plannerService struct {
	assignmentRepo repository.AssignmentRepository
	sessionRepo    repository.SessionRepository
	profileRepo    repository.ProfileRepository
	calendar       integration.CalendarClient
	cfg            config.PlannerConfig
	location       *time.Location
	frontendURL    string
	logger         zerolog.Logger
}

func NewPlannerService(
	assignmentRepo repository.AssignmentRepository,
	sessionRepo repository.SessionRepository,
	profileRepo repository.ProfileRepository,
	calendar integration.CalendarClient,
	cfg config.PlannerConfig,
	logger zerolog.Logger,
) PlannerService {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn().Str("timezone", cfg.Timezone).Msg("Unknown timezone, falling back to UTC")
		location = time.UTC
	}

	return &plannerService{
		assignmentRepo: assignmentRepo,
		sessionRepo:    sessionRepo,
		profileRepo:    profileRepo,
		calendar:       calendar,
		cfg:            cfg,
		location:       location,
		frontendURL:    strings.TrimRight(cfg.FrontendURL, "/"),
		logger:         logger,
	}
}

// Plan computes, persists and mirrors the study sessions for an assignment.
// Invoked once the caller signals that materials are ready. The three stages
// fail independently: a calendar-write failure never rolls back persisted
// sessions.
func (s *plannerService) Plan(ctx context.Context, assignmentID, ownerID string) (int, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return 0, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment == nil {
		return 0, fmt.Errorf("assignment %s not found", assignmentID)
	}

	preferredHour := s.preferredHourFor(ctx, ownerID)
	now := time.Now().In(s.location)

	var lookup BusyLookup
	if s.calendar != nil {
		lookup = func(day time.Time) []models.BusyInterval {
			intervals, err := s.calendar.ListBusyIntervals(ctx, day)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Failed to read busy intervals, scheduling without conflict check")
				return nil
			}
			return intervals
		}
	}

	plans := ComputeSessions(assignment, now, preferredHour, s.cfg.SessionDurationMin, s.cfg.MinHour, s.cfg.MaxHour, lookup)

	sessions := make([]models.StudySession, 0, len(plans))
	for _, plan := range plans {
		sessions = append(sessions, models.StudySession{
			AssignmentID: assignment.ID,
			OwnerID:      ownerID,
			ScheduledAt:  plan.ScheduledAt,
			DurationMin:  plan.DurationMin,
			Topics:       assignment.Topics,
			Focus:        plan.Focus,
			Status:       models.SessionStatusScheduled,
		})
	}

	created, err := s.sessionRepo.CreateBatch(ctx, sessions)
	if err != nil {
		return 0, fmt.Errorf("failed to persist study sessions: %w", err)
	}

	if err := s.assignmentRepo.MarkMaterialsUploaded(ctx, assignment.ID, time.Now().UTC()); err != nil {
		s.logger.Error().Err(err).Str("assignment_id", assignment.ID).Msg("Failed to mark materials uploaded")
	}

	s.mirrorToCalendar(ctx, created, assignment.Title)

	s.logger.Info().
		Str("assignment_id", assignment.ID).
		Int("sessions", len(created)).
		Msg("Study sessions planned")

	return len(created), nil
}

func (s *plannerService) Sessions(ctx context.Context, assignmentID string) ([]models.StudySession, error) {
	return s.sessionRepo.GetByAssignment(ctx, assignmentID)
}

// preferredHourFor maps the owner's first preferred time of day to a start
// hour. Any lookup problem falls back to evening.
func (s *plannerService) preferredHourFor(ctx context.Context, ownerID string) int {
	profile, err := s.profileRepo.GetByID(ctx, ownerID)
	if err != nil || profile == nil || len(profile.PreferredTimes) == 0 {
		return 18
	}

	switch profile.PreferredTimes[0] {
	case "morning":
		return 9
	case "afternoon":
		return 14
	case "evening":
		return 18
	default:
		return 18
	}
}

// mirrorToCalendar writes the persisted sessions back onto the calendar as
// "Study: ..." entries. Best effort only: failures are logged and planning
// still succeeds, which also means the classifier's study-session guard is
// what keeps these entries from being re-ingested as deadlines.
func (s *plannerService) mirrorToCalendar(ctx context.Context, sessions []models.StudySession, assignmentTitle string) {
	if s.calendar == nil {
		return
	}

	for _, session := range sessions {
		sessionURL := s.frontendURL + "/assignments"
		if session.ID != "" {
			sessionURL = fmt.Sprintf("%s/sessions/%s", s.frontendURL, session.ID)
		}

		topics := "General review"
		if len(session.Topics) > 0 {
			limit := len(session.Topics)
			if limit > 3 {
				limit = 3
			}
			topics = strings.Join(session.Topics[:limit], ", ")
		}

		description := fmt.Sprintf(
			"Study session for %s\n\nFocus: %s\nTopics: %s\n\nStart your session: %s\n\nThis study session was automatically scheduled by your Study Companion.",
			assignmentTitle, session.Focus, topics, sessionURL,
		)

		_, err := s.calendar.CreateEvent(ctx, integration.EventInput{
			Summary:      "Study: " + assignmentTitle,
			Description:  description,
			Start:        session.ScheduledAt,
			End:          session.ScheduledAt.Add(time.Duration(session.DurationMin) * time.Minute),
			TimeZone:     s.cfg.Timezone,
			PopupMinutes: 30,
			EmailMinutes: 1440,
			ColorID:      studyEventColorID,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to mirror study session onto calendar")
		}
	}
}
