package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

type ProfileRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

type profileRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProfileRepository(db *sql.DB, logger zerolog.Logger) ProfileRepository {
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT id, email, preferred_times FROM profiles WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT id, email, preferred_times FROM profiles WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *profileRepository) scanOne(row *sql.Row) (*models.Profile, error) {
	profile := &models.Profile{}
	var times pq.StringArray

	err := row.Scan(&profile.ID, &profile.Email, &times)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.PreferredTimes = times
	return profile, nil
}
