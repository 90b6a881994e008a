package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/models"
	"github.com/mtwilk/smart-study-buddy/internal/repository"
	"github.com/mtwilk/smart-study-buddy/internal/service/integration"
)

type SyncService interface {
	Sync(ctx context.Context, ownerID string) ([]models.Assignment, error)
	SyncForEmail(ctx context.Context, email string) (*models.SyncReport, error)
}

type syncService struct {
	eventRepo         repository.EventRepository
	assignmentRepo    repository.AssignmentRepository
	profileRepo       repository.ProfileRepository
	notifier          NotifierService
	reminder          ReminderService
	broker            integration.RabbitMQClient
	reminderDaysAhead int
	logger            zerolog.Logger
}

func NewSyncService(
	eventRepo repository.EventRepository,
	assignmentRepo repository.AssignmentRepository,
	profileRepo repository.ProfileRepository,
	notifier NotifierService,
	reminder ReminderService,
	broker integration.RabbitMQClient,
	reminderDaysAhead int,
	logger zerolog.Logger,
) SyncService {
	return &syncService{
		eventRepo:         eventRepo,
		assignmentRepo:    assignmentRepo,
		profileRepo:       profileRepo,
		notifier:          notifier,
		reminder:          reminder,
		broker:            broker,
		reminderDaysAhead: reminderDaysAhead,
		logger:            logger,
	}
}

// Sync mirrors every unprocessed deadline event into an assignment row,
// earliest deadline first. No study sessions are created here: sessions
// wait until the owner has uploaded materials, so prep time is never
// scheduled before there is content to prepare from.
//
// A failed row creation leaves the event unprocessed for the next run
// (at-least-once delivery; a concurrent run reading the same event before
// the processed flag flips can still duplicate, which is an accepted gap).
func (s *syncService) Sync(ctx context.Context, ownerID string) ([]models.Assignment, error) {
	events, err := s.eventRepo.GetUnprocessedDeadlines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load unprocessed deadlines: %w", err)
	}

	var created []models.Assignment

	for _, event := range events {
		dueAt, err := parseEventTime(event.StartTime)
		if err != nil {
			s.logger.Warn().Err(err).Str("title", event.Title).Msg("Skipping deadline with unparseable start time")
			continue
		}

		deadlineType := event.DeadlineType
		if deadlineType == "" {
			deadlineType = models.AssignmentTypeExam
		}
		subtype := event.ExamSubtype
		if subtype == "" {
			subtype = models.ExamSubtypeHybrid
		}

		assignment := models.Assignment{
			OwnerID:     ownerID,
			Title:       event.Title,
			Type:        deadlineType,
			ExamSubtype: subtype,
			DueAt:       dueAt,
			Topics:      ExtractTopics(event.Title),
			Status:      models.AssignmentStatusUpcoming,
		}

		if err := s.assignmentRepo.Create(ctx, &assignment); err != nil {
			// Left unprocessed so the next run retries.
			s.logger.Error().Err(err).Str("title", event.Title).Msg("Failed to create assignment")
			continue
		}

		if err := s.eventRepo.MarkProcessed(ctx, event.ID); err != nil {
			s.logger.Error().Err(err).Str("event_id", event.ID.Hex()).Msg("Failed to mark event processed; next run may duplicate this assignment")
		}

		s.publishCreated(ctx, &assignment)
		created = append(created, assignment)

		s.logger.Info().
			Str("assignment_id", assignment.ID).
			Str("title", assignment.Title).
			Str("type", assignment.Type).
			Time("due_at", assignment.DueAt).
			Msg("Assignment created from calendar event")
	}

	for i := range created {
		s.notifier.Notify(ctx, &created[i])
	}

	return created, nil
}

// SyncForEmail resolves the owner by email, runs a sync, and collects the
// reminder feed for upcoming deadlines.
func (s *syncService) SyncForEmail(ctx context.Context, email string) (*models.SyncReport, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("no profile found for %s", email)
	}

	created, err := s.Sync(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	reminders, err := s.reminder.UpcomingReminders(ctx, s.reminderDaysAhead)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to collect reminders")
		reminders = nil
	}

	return &models.SyncReport{
		CreatedAssignments: created,
		Reminders:          reminders,
		AssignmentsCount:   len(created),
		RemindersCount:     len(reminders),
	}, nil
}

func (s *syncService) publishCreated(ctx context.Context, assignment *models.Assignment) {
	if s.broker == nil {
		return
	}

	event := &models.AssignmentCreatedEvent{
		AssignmentID: assignment.ID,
		OwnerID:      assignment.OwnerID,
		Title:        assignment.Title,
		Type:         assignment.Type,
		DueAt:        assignment.DueAt.UTC().Format(time.RFC3339),
		Timestamp:    time.Now().Unix(),
	}

	if err := s.broker.PublishAssignmentCreated(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("assignment_id", assignment.ID).Msg("Failed to publish assignment created event")
	}
}
