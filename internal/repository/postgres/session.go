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

// SessionRepository implements repository.SessionRepository using PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()
	if session.Status == "" {
		session.Status = models.StatusScheduled
	}

	query := `
		INSERT INTO sessions (id, coach_id, client_id, session_number, status, scheduled_at, created_at, updated_at)
		VALUES (:id, :coach_id, :client_id, :session_number, :status, :scheduled_at, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, session)
	return err
}

// Get retrieves a session by ID, scoped to the owning coach
func (r *SessionRepository) Get(ctx context.Context, coachID, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	query := `SELECT * FROM sessions WHERE id = $1 AND coach_id = $2`

	err := r.db.GetContext(ctx, &session, query, id, coachID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// ListByCoach retrieves all sessions for a coach, newest first
func (r *SessionRepository) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.Session, error) {
	var sessions []*models.Session
	query := `SELECT * FROM sessions WHERE coach_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &sessions, query, coachID)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// ListRecentCompleted returns the most recent completed sessions for a client
func (r *SessionRepository) ListRecentCompleted(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.Session, error) {
	var sessions []*models.Session
	query := `
		SELECT * FROM sessions
		WHERE client_id = $1 AND status = $2
		ORDER BY ended_at DESC NULLS LAST
		LIMIT $3
	`

	err := r.db.SelectContext(ctx, &sessions, query, clientID, models.StatusCompleted, limit)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// Update applies a partial update to a session
func (r *SessionRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	// Build dynamic update query
	setClause := ""
	params := map[string]interface{}{"id": id}

	for key, value := range updates {
		if setClause != "" {
			setClause += ", "
		}
		setClause += key + " = :" + key
		params[key] = value
	}

	query := "UPDATE sessions SET " + setClause + " WHERE id = :id"

	_, err := r.db.NamedExecContext(ctx, query, params)
	return err
}

// NextSessionNumber returns the next ordinal session number for a client
func (r *SessionRepository) NextSessionNumber(ctx context.Context, clientID uuid.UUID) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(session_number), 0) + 1 FROM sessions WHERE client_id = $1`

	err := r.db.GetContext(ctx, &next, query, clientID)
	if err != nil {
		return 0, err
	}

	return next, nil
}
