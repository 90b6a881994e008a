package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

type EventRepository interface {
	FindByTitleAndStart(ctx context.Context, title, startTime string) (*models.CalendarEvent, error)
	Insert(ctx context.Context, event *models.CalendarEvent) (primitive.ObjectID, error)
	GetUnprocessedDeadlines(ctx context.Context) ([]models.CalendarEvent, error)
	GetUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
	GetAll(ctx context.Context) ([]models.CalendarEvent, error)
	MarkProcessed(ctx context.Context, id primitive.ObjectID) error
	MarkReminderSent(ctx context.Context, id primitive.ObjectID) error
	ResetFlags(ctx context.Context) (int64, error)
}

type eventRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

func NewEventRepository(db *mongo.Database, logger zerolog.Logger) EventRepository {
	return &eventRepository{
		collection: db.Collection(models.CalendarEventCollection),
		logger:     logger,
	}
}

// FindByTitleAndStart looks up an event by its (title, start_time) dedup key.
// Returns nil without error when no such event exists.
func (r *eventRepository) FindByTitleAndStart(ctx context.Context, title, startTime string) (*models.CalendarEvent, error) {
	filter := bson.M{
		"title":      title,
		"start_time": startTime,
	}

	var event models.CalendarEvent
	err := r.collection.FindOne(ctx, filter).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	return &event, nil
}

func (r *eventRepository) Insert(ctx context.Context, event *models.CalendarEvent) (primitive.ObjectID, error) {
	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert event: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}

	return id, nil
}

func (r *eventRepository) GetUnprocessedDeadlines(ctx context.Context) ([]models.CalendarEvent, error) {
	filter := bson.M{
		"is_deadline": true,
		"processed":   false,
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	return r.find(ctx, filter, opts)
}

// GetUpcomingDeadlines returns deadline events inside [from, to] that have
// not been reminded about yet. start_time is compared lexicographically,
// which is correct for ISO-8601 strings.
func (r *eventRepository) GetUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	filter := bson.M{
		"is_deadline": true,
		"start_time": bson.M{
			"$gte": from.UTC().Format(time.RFC3339),
			"$lte": to.UTC().Format(time.RFC3339),
		},
		"reminder_sent": bson.M{"$ne": true},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *eventRepository) GetAll(ctx context.Context) ([]models.CalendarEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *eventRepository) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"processed":    true,
			"processed_at": now,
		},
	}

	_, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}

	return nil
}

func (r *eventRepository) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"reminder_sent":    true,
			"reminder_sent_at": now,
		},
	}

	_, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	return nil
}

// ResetFlags clears processed and reminder_sent on every event. Operational
// recovery only; the next sync run will re-mirror everything.
func (r *eventRepository) ResetFlags(ctx context.Context) (int64, error) {
	update := bson.M{
		"$set": bson.M{
			"processed":     false,
			"reminder_sent": false,
		},
		"$unset": bson.M{
			"processed_at":     "",
			"reminder_sent_at": "",
		},
	}

	result, err := r.collection.UpdateMany(ctx, bson.M{}, update)
	if err != nil {
		return 0, fmt.Errorf("failed to reset event flags: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *eventRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.CalendarEvent, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.CalendarEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return events, nil
}
