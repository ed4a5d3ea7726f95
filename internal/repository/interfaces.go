package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/coachforge/coachforge-backend/internal/models"
)

// SessionRepository defines session storage operations
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, coachID, id uuid.UUID) (*models.Session, error)
	ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.Session, error)
	ListRecentCompleted(ctx context.Context, clientID uuid.UUID, limit int) ([]*models.Session, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	NextSessionNumber(ctx context.Context, clientID uuid.UUID) (int, error)
}

// ClientRepository defines client storage operations
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	Get(ctx context.Context, coachID, id uuid.UUID) (*models.Client, error)
	ListByCoach(ctx context.Context, coachID uuid.UUID) ([]*models.Client, error)
	// AdvanceRollups bumps session_count and current_streak by one and sets
	// last_session_at. Called exactly once per completed pipeline run.
	AdvanceRollups(ctx context.Context, id uuid.UUID, at time.Time) error
}

// CoachRepository defines coach account storage operations
type CoachRepository interface {
	Create(ctx context.Context, coach *models.Coach) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Coach, error)
	GetByEmail(ctx context.Context, email string) (*models.Coach, error)
	IncrementMonthlySessions(ctx context.Context, id uuid.UUID) error
}

// ActionItemRepository defines action item storage operations
type ActionItemRepository interface {
	InsertBatch(ctx context.Context, items []*models.ActionItem) error
	Get(ctx context.Context, id uuid.UUID) (*models.ActionItem, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.ActionItem, error)
	ListOpenByClient(ctx context.Context, clientID uuid.UUID) ([]*models.ActionItem, error)
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error
	MarkNudgeSent(ctx context.Context, id uuid.UUID) error
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
}

// ProgressRepository defines client progress storage operations
type ProgressRepository interface {
	Insert(ctx context.Context, row *models.ClientProgress) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.ClientProgress, error)
}
