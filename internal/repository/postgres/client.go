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

// ClientRepository implements repository.ClientRepository using PostgreSQL
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new PostgreSQL client repository
func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &ClientRepository{db: db}
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if client.PortalToken == "" {
		client.PortalToken = uuid.New().String()
	}
	if client.Status == "" {
		client.Status = models.ClientActive
	}
	if client.Goals == nil {
		client.Goals = []string{}
	}
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	query := `
		INSERT INTO clients (id, coach_id, full_name, email, phone, coaching_type, goals, status, portal_token, intake_notes, created_at, updated_at)
		VALUES (:id, :coach_id, :full_name, :email, :phone, :coaching_type, :goals, :status, :portal_token, :intake_notes, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, client)
	return err
}

// Get retrieves a client by ID, scoped to the owning coach
func (r *ClientRepository) Get(ctx context.Context, coachID, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	query := `SELECT * FROM clients WHERE id = $1 AND coach_id = $2`

	err := r.db.GetContext(ctx, &client, query, id, coachID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &client, nil
}

// ListByCoach retrieves all clients for a coach
func (r *ClientRepository) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.Client, error) {
	var clients []*models.Client
	query := `SELECT * FROM clients WHERE coach_id = $1 ORDER BY full_name`

	err := r.db.SelectContext(ctx, &clients, query, coachID)
	if err != nil {
		return nil, err
	}

	return clients, nil
}

// AdvanceRollups bumps the per-client counters once for a completed session
func (r *ClientRepository) AdvanceRollups(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE clients
		SET session_count = session_count + 1,
		    current_streak = current_streak + 1,
		    last_session_at = $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}
