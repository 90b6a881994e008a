package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/models"
	"github.com/mtwilk/smart-study-buddy/internal/repository"
	"github.com/mtwilk/smart-study-buddy/internal/service/integration"
)

const (
	defaultPullDaysAhead = 90
	maxPullResults       = 100
)

type IngestService interface {
	Ingest(ctx context.Context, raw models.RawEvent) (string, error)
	PullCalendar(ctx context.Context, daysAhead int) (*models.PullStats, error)
	Stats(ctx context.Context) (*models.CalendarStats, error)
	AllEvents(ctx context.Context) ([]models.CalendarEvent, error)
	UnprocessedDeadlines(ctx context.Context) ([]models.CalendarEvent, error)
	ResetFlags(ctx context.Context) (int64, error)
}

type ingestService struct {
	eventRepo repository.EventRepository
	calendar  integration.CalendarClient
	logger    zerolog.Logger
}

func NewIngestService(eventRepo repository.EventRepository, calendar integration.CalendarClient, logger zerolog.Logger) IngestService {
	return &ingestService{
		eventRepo: eventRepo,
		calendar:  calendar,
		logger:    logger,
	}
}

// Ingest stores one raw calendar event, classified, with processed=false.
// The (title, start_time) pair is the dedup key: ingesting the same pair
// again returns the existing id without touching the stored document, so
// the frozen classification survives re-pulls.
func (s *ingestService) Ingest(ctx context.Context, raw models.RawEvent) (string, error) {
	if raw.Title == "" {
		return "", errors.New("event title is required")
	}
	if raw.StartTime == "" {
		return "", errors.New("event start time is required")
	}

	existing, err := s.eventRepo.FindByTitleAndStart(ctx, raw.Title, raw.StartTime)
	if err != nil {
		return "", fmt.Errorf("failed to check for existing event: %w", err)
	}
	if existing != nil {
		return existing.ID.Hex(), nil
	}

	verdict := Classify(raw.Title)

	event := &models.CalendarEvent{
		Title:         raw.Title,
		StartTime:     raw.StartTime,
		GoogleEventID: raw.GoogleEventID,
		Description:   raw.Description,
		Location:      raw.Location,
		IsDeadline:    verdict.IsDeadline,
		Processed:     false,
		ReminderSent:  false,
		CreatedAt:     time.Now().UTC(),
	}

	if verdict.IsDeadline {
		event.DeadlineType = verdict.Type
		event.ExamSubtype = verdict.ExamSubtype
		event.CourseGuess = verdict.CourseGuess
	}

	id, err := s.eventRepo.Insert(ctx, event)
	if err != nil {
		return "", err
	}

	return id.Hex(), nil
}

// PullCalendar fetches upcoming events from the calendar client and ingests
// each one. A single failing insert is logged and skipped so one bad event
// cannot block the rest of the pull.
func (s *ingestService) PullCalendar(ctx context.Context, daysAhead int) (*models.PullStats, error) {
	if s.calendar == nil {
		return nil, errors.New("no calendar client configured")
	}

	if daysAhead <= 0 {
		daysAhead = defaultPullDaysAhead
	}

	now := time.Now().UTC()
	items, err := s.calendar.ListEvents(ctx, now, now.AddDate(0, 0, daysAhead), maxPullResults)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	stats := &models.PullStats{EventsFetched: len(items)}

	for _, item := range items {
		title := item.Summary
		if title == "" {
			title = "No Title"
		}

		_, err := s.Ingest(ctx, models.RawEvent{
			Title:         title,
			StartTime:     item.Start,
			GoogleEventID: item.ID,
			Description:   item.Description,
			Location:      item.Location,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("title", title).Msg("Failed to ingest calendar event")
			continue
		}

		stats.EventsIngested++
		if Classify(title).IsDeadline {
			stats.DeadlinesFound++
		}
	}

	s.logger.Info().
		Int("fetched", stats.EventsFetched).
		Int("ingested", stats.EventsIngested).
		Int("deadlines", stats.DeadlinesFound).
		Msg("Calendar pull complete")

	return stats, nil
}

func (s *ingestService) Stats(ctx context.Context) (*models.CalendarStats, error) {
	all, err := s.eventRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	unprocessed, err := s.eventRepo.GetUnprocessedDeadlines(ctx)
	if err != nil {
		return nil, err
	}

	return &models.CalendarStats{
		TotalEvents:          len(all),
		UnprocessedDeadlines: len(unprocessed),
	}, nil
}

func (s *ingestService) AllEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	return s.eventRepo.GetAll(ctx)
}

func (s *ingestService) UnprocessedDeadlines(ctx context.Context) ([]models.CalendarEvent, error) {
	return s.eventRepo.GetUnprocessedDeadlines(ctx)
}

func (s *ingestService) ResetFlags(ctx context.Context) (int64, error) {
	count, err := s.eventRepo.ResetFlags(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Warn().Int64("events", count).Msg("Event flags reset; next sync will re-mirror everything")
	return count, nil
}
