package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/models"
	"github.com/mtwilk/smart-study-buddy/internal/repository"
)

type ReminderService interface {
	// UpcomingReminders builds reminders for deadline events within the
	// window and flags them so each deadline is reminded about once.
	UpcomingReminders(ctx context.Context, daysAhead int) ([]models.Reminder, error)
	// Upcoming lists the same events without flagging them.
	Upcoming(ctx context.Context, daysAhead int) ([]models.CalendarEvent, error)
}

type reminderService struct {
	eventRepo repository.EventRepository
	logger    zerolog.Logger
}

func NewReminderService(eventRepo repository.EventRepository, logger zerolog.Logger) ReminderService {
	return &reminderService{
		eventRepo: eventRepo,
		logger:    logger,
	}
}

func (s *reminderService) UpcomingReminders(ctx context.Context, daysAhead int) ([]models.Reminder, error) {
	now := time.Now().UTC()

	events, err := s.eventRepo.GetUpcomingDeadlines(ctx, now, now.AddDate(0, 0, daysAhead))
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming deadlines: %w", err)
	}

	var reminders []models.Reminder

	for _, event := range events {
		due, err := parseEventTime(event.StartTime)
		if err != nil {
			s.logger.Warn().Err(err).Str("title", event.Title).Msg("Skipping reminder for unparseable start time")
			continue
		}

		daysUntil := int(due.Sub(now).Hours() / 24)

		reminders = append(reminders, models.Reminder{
			EventID:   event.ID.Hex(),
			Title:     event.Title,
			Date:      event.StartTime,
			DaysUntil: daysUntil,
			Message:   reminderMessage(event, daysUntil),
		})

		if err := s.eventRepo.MarkReminderSent(ctx, event.ID); err != nil {
			s.logger.Error().Err(err).Str("event_id", event.ID.Hex()).Msg("Failed to mark reminder sent")
		}
	}

	return reminders, nil
}

func (s *reminderService) Upcoming(ctx context.Context, daysAhead int) ([]models.CalendarEvent, error) {
	now := time.Now().UTC()
	return s.eventRepo.GetUpcomingDeadlines(ctx, now, now.AddDate(0, 0, daysAhead))
}

func reminderMessage(event models.CalendarEvent, daysUntil int) string {
	urgency := fmt.Sprintf("in %d days", daysUntil)
	if daysUntil <= 1 {
		urgency = "tomorrow"
	}

	course := event.CourseGuess
	if course == "" {
		course = Classify(event.Title).CourseGuess
	}

	return fmt.Sprintf(
		"Hey! You have an exam %s on %s. Can you share your slides/notes so I can generate personalized practice questions?",
		urgency, course,
	)
}
