package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/coachforge/coachforge-backend/internal/models"
	"github.com/coachforge/coachforge-backend/internal/repository"
)

// CoachRepository implements repository.CoachRepository using PostgreSQL
type CoachRepository struct {
	db *sqlx.DB
}

// NewCoachRepository creates a new PostgreSQL coach repository
func NewCoachRepository(db *sqlx.DB) repository.CoachRepository {
	return &CoachRepository{db: db}
}

// Create creates a new coach account
func (r *CoachRepository) Create(ctx context.Context, coach *models.Coach) error {
	if coach.ID == uuid.Nil {
		coach.ID = uuid.New()
	}
	if coach.Timezone == "" {
		coach.Timezone = "UTC"
	}
	coach.CreatedAt = time.Now()
	coach.UpdatedAt = time.Now()

	query := `
		INSERT INTO coaches (id, full_name, email, password_hash, coaching_type, timezone, created_at, updated_at)
		VALUES (:id, :full_name, :email, :password_hash, :coaching_type, :timezone, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, coach)
	return err
}

// GetByID retrieves a coach by ID
func (r *CoachRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Coach, error) {
	var coach models.Coach
	query := `SELECT * FROM coaches WHERE id = $1`

	err := r.db.GetContext(ctx, &coach, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &coach, nil
}

// GetByEmail retrieves a coach by email address
func (r *CoachRepository) GetByEmail(ctx context.Context, email string) (*models.Coach, error) {
	var coach models.Coach
	query := `SELECT * FROM coaches WHERE email = $1`

	err := r.db.GetContext(ctx, &coach, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &coach, nil
}

// IncrementMonthlySessions bumps the coach's monthly session counter
func (r *CoachRepository) IncrementMonthlySessions(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE coaches
		SET session_count_this_month = session_count_this_month + 1,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
