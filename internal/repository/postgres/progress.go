package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/coachforge/coachforge-backend/internal/models"
	"github.com/coachforge/coachforge-backend/internal/repository"
)

// ProgressRepository implements repository.ProgressRepository using PostgreSQL
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new PostgreSQL progress repository
func NewProgressRepository(db *sqlx.DB) repository.ProgressRepository {
	return &ProgressRepository{db: db}
}

// Insert appends one observation to the client's time series
func (r *ProgressRepository) Insert(ctx context.Context, row *models.ClientProgress) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Date.IsZero() {
		row.Date = time.Now()
	}
	row.CreatedAt = time.Now()

	query := `
		INSERT INTO client_progress (id, client_id, session_id, date, type, value, label, notes, created_at)
		VALUES (:id, :client_id, :session_id, :date, :type, :value, :label, :notes, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, row)
	return err
}

// ListByClient retrieves a client's progress rows, oldest first
func (r *ProgressRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.ClientProgress, error) {
	var rows []*models.ClientProgress
	query := `SELECT * FROM client_progress WHERE client_id = $1 ORDER BY date, created_at`

	err := r.db.SelectContext(ctx, &rows, query, clientID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
