package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtwilk/smart-study-buddy/internal/models"
	"github.com/mtwilk/smart-study-buddy/internal/service/integration"
)

func TestIngest_StoresClassifiedEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewIngestService(repo, nil, zerolog.Nop())

	id, err := svc.Ingest(ctx, models.RawEvent{
		Title:     "Machine Learning Final Exam",
		StartTime: "2025-06-10T10:00:00Z",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, repo.events, 1)

	event := repo.events[0]
	assert.True(t, event.IsDeadline)
	assert.Equal(t, models.AssignmentTypeExam, event.DeadlineType)
	assert.Equal(t, models.ExamSubtypeHybrid, event.ExamSubtype)
	assert.Equal(t, "Machine Learning", event.CourseGuess)
	assert.False(t, event.Processed)
	assert.False(t, event.ReminderSent)
}

func TestIngest_NonDeadlineKeepsVerdictFieldsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewIngestService(repo, nil, zerolog.Nop())

	_, err := svc.Ingest(ctx, models.RawEvent{
		Title:     "Lunch with Anna",
		StartTime: "2025-06-03T12:00:00Z",
	})
	require.NoError(t, err)

	event := repo.events[0]
	assert.False(t, event.IsDeadline)
	assert.Empty(t, event.DeadlineType)
	assert.Empty(t, event.CourseGuess)
}

func TestIngest_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewIngestService(repo, nil, zerolog.Nop())

	raw := models.RawEvent{
		Title:     "Statistics midterm",
		StartTime: "2025-06-12T09:00:00Z",
	}

	first, err := svc.Ingest(ctx, raw)
	require.NoError(t, err)

	second, err := svc.Ingest(ctx, raw)
	require.NoError(t, err)

	// Same (title, start_time) pair: same id, single stored document.
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.inserted)
}

func TestIngest_RejectsIncompleteEvents(t *testing.T) {
	ctx := context.Background()
	svc := NewIngestService(newFakeEventRepo(), nil, zerolog.Nop())

	_, err := svc.Ingest(ctx, models.RawEvent{StartTime: "2025-06-12T09:00:00Z"})
	require.Error(t, err)

	_, err = svc.Ingest(ctx, models.RawEvent{Title: "Statistics midterm"})
	require.Error(t, err)
}

func TestPullCalendar_IngestsAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	calendar := &fakeCalendarClient{items: []integration.CalendarEventItem{
		{ID: "e1", Summary: "Machine Learning Final Exam", Start: "2025-06-10T10:00:00Z"},
		{ID: "e2", Summary: "Lunch with Anna", Start: "2025-06-03T12:00:00Z"},
		{ID: "e3", Summary: "", Start: "2025-06-04T12:00:00Z"},
	}}

	svc := NewIngestService(repo, calendar, zerolog.Nop())

	stats, err := svc.PullCalendar(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.EventsFetched)
	assert.Equal(t, 3, stats.EventsIngested)
	assert.Equal(t, 1, stats.DeadlinesFound)

	// Untitled events get a placeholder so they still dedup.
	found := false
	for _, e := range repo.events {
		if e.Title == "No Title" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPullCalendar_NoClient(t *testing.T) {
	svc := NewIngestService(newFakeEventRepo(), nil, zerolog.Nop())

	_, err := svc.PullCalendar(context.Background(), 30)
	require.Error(t, err)
}

func TestResetFlags(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewIngestService(repo, nil, zerolog.Nop())

	_, err := svc.Ingest(ctx, models.RawEvent{Title: "Statistics midterm", StartTime: "2025-06-12T09:00:00Z"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkProcessed(ctx, repo.events[0].ID))

	count, err := svc.ResetFlags(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
