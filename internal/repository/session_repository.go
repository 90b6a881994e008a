package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

type SessionRepository interface {
	CreateBatch(ctx context.Context, sessions []models.StudySession) ([]models.StudySession, error)
	GetByAssignment(ctx context.Context, assignmentID string) ([]models.StudySession, error)
}

type sessionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSessionRepository(db *sql.DB, logger zerolog.Logger) SessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts all sessions in one transaction so an assignment never
// ends up with a partial study plan.
func (r *sessionRepository) CreateBatch(ctx context.Context, sessions []models.StudySession) ([]models.StudySession, error) {
	if len(sessions) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO study_sessions (assignment_id, owner_id, scheduled_at, duration_min, topics, focus, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	created := make([]models.StudySession, 0, len(sessions))
	for _, session := range sessions {
		err := tx.QueryRowContext(ctx, query,
			session.AssignmentID,
			session.OwnerID,
			session.ScheduledAt,
			session.DurationMin,
			pq.Array(session.Topics),
			session.Focus,
			session.Status,
		).Scan(&session.ID, &session.CreatedAt)

		if err != nil {
			return nil, fmt.Errorf("failed to create study session: %w", err)
		}

		created = append(created, session)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit study sessions: %w", err)
	}

	return created, nil
}

func (r *sessionRepository) GetByAssignment(ctx context.Context, assignmentID string) ([]models.StudySession, error) {
	query := `
		SELECT id, assignment_id, owner_id, scheduled_at, duration_min, topics, focus, status, created_at
		FROM study_sessions
		WHERE assignment_id = $1
		ORDER BY scheduled_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get study sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.StudySession
	for rows.Next() {
		var session models.StudySession
		var topics pq.StringArray

		err := rows.Scan(
			&session.ID,
			&session.AssignmentID,
			&session.OwnerID,
			&session.ScheduledAt,
			&session.DurationMin,
			&topics,
			&session.Focus,
			&session.Status,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}

		session.Topics = topics
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
