package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

func newTestSync(events *fakeEventRepo, assignments *fakeAssignmentRepo, profiles *fakeProfileRepo, email *fakeEmailClient, broker *fakeBroker) SyncService {
	notifier := NewNotifierService(assignments, profiles, email, zerolog.Nop())
	reminder := NewReminderService(events, zerolog.Nop())

	if broker == nil {
		return NewSyncService(events, assignments, profiles, notifier, reminder, nil, 7, zerolog.Nop())
	}
	return NewSyncService(events, assignments, profiles, notifier, reminder, broker, 7, zerolog.Nop())
}

// End-to-end deadline flow: an ingested "Machine Learning Final Exam" event
// becomes an assignment with the derived course topics, flips to processed,
// and triggers exactly one notification.
func TestSync_MirrorsDeadlineIntoAssignment(t *testing.T) {
	ctx := context.Background()

	events := newFakeEventRepo()
	ingest := NewIngestService(events, nil, zerolog.Nop())
	_, err := ingest.Ingest(ctx, models.RawEvent{
		Title:     "Machine Learning Final Exam",
		StartTime: "2025-06-10T10:00:00Z",
	})
	require.NoError(t, err)

	assignments := newFakeAssignmentRepo()
	profiles := &fakeProfileRepo{profiles: []models.Profile{
		{ID: "owner-1", Email: "student@example.com", PreferredTimes: []string{"evening"}},
	}}
	email := &fakeEmailClient{}
	broker := &fakeBroker{}

	svc := newTestSync(events, assignments, profiles, email, broker)

	created, err := svc.Sync(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, created, 1)

	assignment := created[0]
	assert.Equal(t, "Machine Learning Final Exam", assignment.Title)
	assert.Equal(t, models.AssignmentTypeExam, assignment.Type)
	assert.Equal(t, models.ExamSubtypeHybrid, assignment.ExamSubtype)
	assert.Equal(t, []string{"Machine Learning Final"}, assignment.Topics)
	assert.Equal(t, models.AssignmentStatusUpcoming, assignment.Status)
	assert.Equal(t, time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC), assignment.DueAt.UTC())

	// Event flipped to processed, one email went out, one broker event.
	assert.True(t, events.processed[events.events[0].ID.Hex()])
	require.Len(t, email.sent, 1)
	assert.Equal(t, []string{"student@example.com"}, email.sentTo)
	require.Len(t, broker.published, 1)
	assert.Equal(t, assignment.ID, broker.published[0].AssignmentID)

	// A second run finds nothing left to mirror.
	again, err := svc.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, email.sent, 1)
}

func TestSync_SkipsNonDeadlines(t *testing.T) {
	ctx := context.Background()

	events := newFakeEventRepo()
	ingest := NewIngestService(events, nil, zerolog.Nop())
	_, err := ingest.Ingest(ctx, models.RawEvent{
		Title:     "Lunch with Anna",
		StartTime: "2025-06-03T12:00:00Z",
	})
	require.NoError(t, err)

	svc := newTestSync(events, newFakeAssignmentRepo(), &fakeProfileRepo{}, &fakeEmailClient{}, nil)

	created, err := svc.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestSync_FailedCreateLeavesEventUnprocessed(t *testing.T) {
	ctx := context.Background()

	events := newFakeEventRepo()
	ingest := NewIngestService(events, nil, zerolog.Nop())
	_, err := ingest.Ingest(ctx, models.RawEvent{
		Title:     "Statistics midterm",
		StartTime: "2025-06-12T09:00:00Z",
	})
	require.NoError(t, err)

	assignments := newFakeAssignmentRepo()
	assignments.createErr = errBoom

	svc := newTestSync(events, assignments, &fakeProfileRepo{}, &fakeEmailClient{}, nil)

	created, err := svc.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, created)

	// Event stays unprocessed so the next run retries.
	assert.False(t, events.processed[events.events[0].ID.Hex()])

	assignments.createErr = nil
	created, err = svc.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestSync_DefaultsForLegacyEvents(t *testing.T) {
	ctx := context.Background()

	// An event stored without verdict fields still mirrors, with exam and
	// hybrid as defaults.
	events := newFakeEventRepo()
	_, err := events.Insert(ctx, &models.CalendarEvent{
		Title:      "Something graded",
		StartTime:  "2025-06-12T09:00:00Z",
		IsDeadline: true,
	})
	require.NoError(t, err)

	svc := newTestSync(events, newFakeAssignmentRepo(), &fakeProfileRepo{}, &fakeEmailClient{}, nil)

	created, err := svc.Sync(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, models.AssignmentTypeExam, created[0].Type)
	assert.Equal(t, models.ExamSubtypeHybrid, created[0].ExamSubtype)
}

func TestSync_SkipsUnparseableStartTime(t *testing.T) {
	ctx := context.Background()

	events := newFakeEventRepo()
	_, err := events.Insert(ctx, &models.CalendarEvent{
		Title:      "Broken exam entry",
		StartTime:  "sometime next week",
		IsDeadline: true,
	})
	require.NoError(t, err)

	svc := newTestSync(events, newFakeAssignmentRepo(), &fakeProfileRepo{}, &fakeEmailClient{}, nil)

	created, err := svc.Sync(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestSyncForEmail(t *testing.T) {
	ctx := context.Background()

	events := newFakeEventRepo()
	ingest := NewIngestService(events, nil, zerolog.Nop())

	dueSoon := time.Now().UTC().AddDate(0, 0, 3).Format(time.RFC3339)
	_, err := ingest.Ingest(ctx, models.RawEvent{
		Title:     "Machine Learning Final Exam",
		StartTime: dueSoon,
	})
	require.NoError(t, err)

	assignments := newFakeAssignmentRepo()
	profiles := &fakeProfileRepo{profiles: []models.Profile{
		{ID: "owner-1", Email: "student@example.com"},
	}}

	svc := newTestSync(events, assignments, profiles, &fakeEmailClient{}, nil)

	report, err := svc.SyncForEmail(ctx, "student@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, report.AssignmentsCount)
	require.Equal(t, 1, report.RemindersCount)
	assert.Contains(t, report.Reminders[0].Message, "Machine Learning")

	// The reminder flag sticks: the next report carries no reminders.
	report, err = svc.SyncForEmail(ctx, "student@example.com")
	require.NoError(t, err)
	assert.Zero(t, report.RemindersCount)
}

func TestSyncForEmail_UnknownProfile(t *testing.T) {
	svc := newTestSync(newFakeEventRepo(), newFakeAssignmentRepo(), &fakeProfileRepo{}, &fakeEmailClient{}, nil)

	_, err := svc.SyncForEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no profile found")
}
