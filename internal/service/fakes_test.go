package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mtwilk/smart-study-buddy/internal/models"
	"github.com/mtwilk/smart-study-buddy/internal/service/integration"
)

// In-memory stand-ins for the repositories and integration clients, shared
// across the service tests.

type fakeEventRepo struct {
	events     []models.CalendarEvent
	insertErr  error
	inserted   int
	processed  map[string]bool
	reminded   map[string]bool
	resetCount int64
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		processed: make(map[string]bool),
		reminded:  make(map[string]bool),
	}
}

func (f *fakeEventRepo) FindByTitleAndStart(_ context.Context, title, startTime string) (*models.CalendarEvent, error) {
	for i := range f.events {
		if f.events[i].Title == title && f.events[i].StartTime == startTime {
			return &f.events[i], nil
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) Insert(_ context.Context, event *models.CalendarEvent) (primitive.ObjectID, error) {
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}

	id := primitive.NewObjectID()
	stored := *event
	stored.ID = id
	f.events = append(f.events, stored)
	f.inserted++

	return id, nil
}

func (f *fakeEventRepo) GetUnprocessedDeadlines(_ context.Context) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	for _, e := range f.events {
		if e.IsDeadline && !e.Processed && !f.processed[e.ID.Hex()] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetUpcomingDeadlines(_ context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	lo := from.UTC().Format(time.RFC3339)
	hi := to.UTC().Format(time.RFC3339)

	var out []models.CalendarEvent
	for _, e := range f.events {
		if !e.IsDeadline || e.ReminderSent || f.reminded[e.ID.Hex()] {
			continue
		}
		if e.StartTime >= lo && e.StartTime <= hi {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetAll(_ context.Context) ([]models.CalendarEvent, error) {
	return f.events, nil
}

func (f *fakeEventRepo) MarkProcessed(_ context.Context, id primitive.ObjectID) error {
	f.processed[id.Hex()] = true
	return nil
}

func (f *fakeEventRepo) MarkReminderSent(_ context.Context, id primitive.ObjectID) error {
	f.reminded[id.Hex()] = true
	return nil
}

func (f *fakeEventRepo) ResetFlags(_ context.Context) (int64, error) {
	count := int64(len(f.processed) + len(f.reminded))
	f.processed = make(map[string]bool)
	f.reminded = make(map[string]bool)
	f.resetCount = count
	return count, nil
}

type fakeAssignmentRepo struct {
	assignments []models.Assignment
	createErr   error
	notified    map[string]bool
	materials   map[string]bool
	nextID      int
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		notified:  make(map[string]bool),
		materials: make(map[string]bool),
	}
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.nextID++
	assignment.ID = fmt.Sprintf("assignment-%d", f.nextID)
	assignment.CreatedAt = time.Now().UTC()
	f.assignments = append(f.assignments, *assignment)

	return nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*models.Assignment, error) {
	for i := range f.assignments {
		if f.assignments[i].ID == id {
			a := f.assignments[i]
			a.NotificationSent = f.notified[id]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAssignmentRepo) GetUpcoming(_ context.Context, ownerID string, within time.Duration) ([]models.Assignment, error) {
	cutoff := time.Now().Add(within)

	var out []models.Assignment
	for _, a := range f.assignments {
		if a.OwnerID == ownerID && a.DueAt.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) MarkNotificationSent(_ context.Context, id string, _ time.Time) error {
	f.notified[id] = true
	return nil
}

func (f *fakeAssignmentRepo) MarkMaterialsUploaded(_ context.Context, id string, _ time.Time) error {
	f.materials[id] = true
	return nil
}

type fakeSessionRepo struct {
	sessions  []models.StudySession
	createErr error
	nextID    int
}

func (f *fakeSessionRepo) CreateBatch(_ context.Context, sessions []models.StudySession) ([]models.StudySession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	created := make([]models.StudySession, 0, len(sessions))
	for _, s := range sessions {
		f.nextID++
		s.ID = fmt.Sprintf("session-%d", f.nextID)
		s.CreatedAt = time.Now().UTC()
		f.sessions = append(f.sessions, s)
		created = append(created, s)
	}

	return created, nil
}

func (f *fakeSessionRepo) GetByAssignment(_ context.Context, assignmentID string) ([]models.StudySession, error) {
	var out []models.StudySession
	for _, s := range f.sessions {
		if s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles []models.Profile
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	for i := range f.profiles {
		if f.profiles[i].Email == email {
			return &f.profiles[i], nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			return &f.profiles[i], nil
		}
	}
	return nil, nil
}

type fakeCalendarClient struct {
	items      []integration.CalendarEventItem
	listErr    error
	busy       map[string][]models.BusyInterval
	created    []integration.EventInput
	createErr  error
	createdIDs int
}

func (f *fakeCalendarClient) ListEvents(_ context.Context, _, _ time.Time, _ int) ([]integration.CalendarEventItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeCalendarClient) ListBusyIntervals(_ context.Context, day time.Time) ([]models.BusyInterval, error) {
	return f.busy[day.Format("2006-01-02")], nil
}

func (f *fakeCalendarClient) CreateEvent(_ context.Context, input integration.EventInput) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}

	f.createdIDs++
	f.created = append(f.created, input)
	return fmt.Sprintf("gcal-%d", f.createdIDs), nil
}

type fakeEmailClient struct {
	sent    []integration.AssignmentNotification
	sentTo  []string
	sendErr error
}

func (f *fakeEmailClient) SendAssignmentNotification(to string, details integration.AssignmentNotification) error {
	if f.sendErr != nil {
		return f.sendErr
	}

	f.sent = append(f.sent, details)
	f.sentTo = append(f.sentTo, to)
	return nil
}

func (f *fakeEmailClient) SendTestEmail(to string) error {
	if f.sendErr != nil {
		return f.sendErr
	}

	f.sentTo = append(f.sentTo, to)
	return nil
}

type fakeBroker struct {
	published []models.AssignmentCreatedEvent
	closed    bool
}

func (f *fakeBroker) PublishAssignmentCreated(_ context.Context, event *models.AssignmentCreatedEvent) error {
	f.published = append(f.published, *event)
	return nil
}

func (f *fakeBroker) Close() error {
	f.closed = true
	return nil
}

var errBoom = errors.New("boom")
