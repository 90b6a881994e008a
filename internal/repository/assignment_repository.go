package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	GetUpcoming(ctx context.Context, ownerID string, within time.Duration) ([]models.Assignment, error)
	MarkNotificationSent(ctx context.Context, id string, at time.Time) error
	MarkMaterialsUploaded(ctx context.Context, id string, at time.Time) error
}

type assignmentRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the assignment and fills in the store-generated id and
// created_at.
func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (owner_id, title, type, exam_subtype, due_at, topics, status, materials_uploaded, notification_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		assignment.OwnerID,
		assignment.Title,
		assignment.Type,
		assignment.ExamSubtype,
		assignment.DueAt,
		pq.Array(assignment.Topics),
		assignment.Status,
		assignment.MaterialsUploaded,
		assignment.NotificationSent,
	).Scan(&assignment.ID, &assignment.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	return nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `
		SELECT id, owner_id, title, type, exam_subtype, due_at, topics, status,
		       materials_uploaded, materials_uploaded_at,
		       notification_sent, notification_sent_at, created_at
		FROM assignments
		WHERE id = $1
	`

	assignment := &models.Assignment{}
	var topics pq.StringArray

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&assignment.ID,
		&assignment.OwnerID,
		&assignment.Title,
		&assignment.Type,
		&assignment.ExamSubtype,
		&assignment.DueAt,
		&topics,
		&assignment.Status,
		&assignment.MaterialsUploaded,
		&assignment.MaterialsUploadedAt,
		&assignment.NotificationSent,
		&assignment.NotificationSentAt,
		&assignment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	assignment.Topics = topics
	return assignment, nil
}

func (r *assignmentRepository) GetUpcoming(ctx context.Context, ownerID string, within time.Duration) ([]models.Assignment, error) {
	query := `
		SELECT id, owner_id, title, type, exam_subtype, due_at, topics, status,
		       materials_uploaded, materials_uploaded_at,
		       notification_sent, notification_sent_at, created_at
		FROM assignments
		WHERE owner_id = $1 AND due_at BETWEEN NOW() AND NOW() + $2::interval
		ORDER BY due_at ASC
	`

	interval := fmt.Sprintf("%d seconds", int(within.Seconds()))

	rows, err := r.db.QueryContext(ctx, query, ownerID, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var assignment models.Assignment
		var topics pq.StringArray

		err := rows.Scan(
			&assignment.ID,
			&assignment.OwnerID,
			&assignment.Title,
			&assignment.Type,
			&assignment.ExamSubtype,
			&assignment.DueAt,
			&topics,
			&assignment.Status,
			&assignment.MaterialsUploaded,
			&assignment.MaterialsUploadedAt,
			&assignment.NotificationSent,
			&assignment.NotificationSentAt,
			&assignment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}

		assignment.Topics = topics
		assignments = append(assignments, assignment)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) MarkNotificationSent(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE assignments
		SET notification_sent = TRUE, notification_sent_at = $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return nil
}

func (r *assignmentRepository) MarkMaterialsUploaded(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE assignments
		SET materials_uploaded = TRUE, materials_uploaded_at = $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark materials uploaded: %w", err)
	}

	return nil
}
