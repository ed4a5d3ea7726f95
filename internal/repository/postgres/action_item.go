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

// ActionItemRepository implements repository.ActionItemRepository using PostgreSQL
type ActionItemRepository struct {
	db *sqlx.DB
}

// NewActionItemRepository creates a new PostgreSQL action item repository
func NewActionItemRepository(db *sqlx.DB) repository.ActionItemRepository {
	return &ActionItemRepository{db: db}
}

// InsertBatch inserts one batch of pipeline-derived action items
func (r *ActionItemRepository) InsertBatch(ctx context.Context, items []*models.ActionItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO action_items (id, session_id, client_id, coach_id, task, priority, due_date, created_at)
		VALUES (:id, :session_id, :client_id, :coach_id, :task, :priority, :due_date, :created_at)
	`

	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.Priority == "" {
			item.Priority = models.PriorityMedium
		}
		item.CreatedAt = time.Now()
	}

	_, err := r.db.NamedExecContext(ctx, query, items)
	return err
}

// Get retrieves an action item by ID
func (r *ActionItemRepository) Get(ctx context.Context, id uuid.UUID) (*models.ActionItem, error) {
	var item models.ActionItem
	query := `SELECT * FROM action_items WHERE id = $1`

	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &item, nil
}

// ListBySession retrieves all action items for a session
func (r *ActionItemRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.ActionItem, error) {
	var items []*models.ActionItem
	query := `SELECT * FROM action_items WHERE session_id = $1 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &items, query, sessionID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// ListOpenByClient retrieves a client's incomplete action items
func (r *ActionItemRepository) ListOpenByClient(ctx context.Context, clientID uuid.UUID) ([]*models.ActionItem, error) {
	var items []*models.ActionItem
	query := `SELECT * FROM action_items WHERE client_id = $1 AND completed = FALSE ORDER BY created_at`

	err := r.db.SelectContext(ctx, &items, query, clientID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// SetCompleted toggles the completion flag
func (r *ActionItemRepository) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	var completedAt *time.Time
	if completed {
		now := time.Now()
		completedAt = &now
	}

	query := `UPDATE action_items SET completed = $2, completed_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, completed, completedAt)
	return err
}

// MarkNudgeSent records that a nudge was delivered for this item
func (r *ActionItemRepository) MarkNudgeSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE action_items SET nudge_sent = TRUE, nudge_sent_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteBySession removes a session's action items (replace-on-reprocess policy)
func (r *ActionItemRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	query := `DELETE FROM action_items WHERE session_id = $1`
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}
