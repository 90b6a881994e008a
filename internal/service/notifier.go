package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/models"
	"github.com/mtwilk/smart-study-buddy/internal/repository"
	"github.com/mtwilk/smart-study-buddy/internal/service/integration"
)

// NotifierService sends at most one email per assignment, as observed by
// this process. The persisted notification_sent flag carries that guarantee
// across runs; flag-then-send is not atomic, so two runs racing on the same
// assignment can still both send.
type NotifierService interface {
	Notify(ctx context.Context, assignment *models.Assignment) bool
	NotificationsSent() int64
}

type notifierService struct {
	assignmentRepo repository.AssignmentRepository
	profileRepo    repository.ProfileRepository
	email          integration.EmailClient
	sent           atomic.Int64
	logger         zerolog.Logger
}

func NewNotifierService(
	assignmentRepo repository.AssignmentRepository,
	profileRepo repository.ProfileRepository,
	email integration.EmailClient,
	logger zerolog.Logger,
) NotifierService {
	return &notifierService{
		assignmentRepo: assignmentRepo,
		profileRepo:    profileRepo,
		email:          email,
		logger:         logger,
	}
}

// Notify reports true when the assignment has been notified about, whether
// by this call or an earlier one. On send failure the flag stays false so
// the next run retries.
func (s *notifierService) Notify(ctx context.Context, assignment *models.Assignment) bool {
	if assignment.NotificationSent {
		return true
	}

	if s.email == nil {
		s.logger.Debug().Str("assignment_id", assignment.ID).Msg("No email client configured, skipping notification")
		return false
	}

	profile, err := s.profileRepo.GetByID(ctx, assignment.OwnerID)
	if err != nil || profile == nil {
		s.logger.Error().Err(err).Str("owner_id", assignment.OwnerID).Msg("Failed to resolve notification recipient")
		return false
	}

	err = s.email.SendAssignmentNotification(profile.Email, integration.AssignmentNotification{
		AssignmentID: assignment.ID,
		Title:        assignment.Title,
		DueAt:        assignment.DueAt,
		Type:         assignment.Type,
		Course:       Classify(assignment.Title).CourseGuess,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("assignment_id", assignment.ID).Msg("Failed to send assignment notification, will retry next run")
		return false
	}

	now := time.Now().UTC()
	if err := s.assignmentRepo.MarkNotificationSent(ctx, assignment.ID, now); err != nil {
		// Email went out but the flag did not stick: the next run may send
		// a duplicate.
		s.logger.Error().Err(err).Str("assignment_id", assignment.ID).Msg("Failed to persist notification flag")
	}

	assignment.NotificationSent = true
	assignment.NotificationSentAt = &now
	s.sent.Add(1)

	return true
}

func (s *notifierService) NotificationsSent() int64 {
	return s.sent.Load()
}
