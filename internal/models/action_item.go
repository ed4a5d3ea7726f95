package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks an action item against the client's primary goal.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// ActionItem is a discrete commitment extracted from a session by the
// synthesis pipeline. The pipeline never mutates an item after insert; only
// the coach toggles completion.
type ActionItem struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	SessionID   uuid.UUID  `db:"session_id" json:"session_id"`
	ClientID    uuid.UUID  `db:"client_id" json:"client_id"`
	CoachID     uuid.UUID  `db:"coach_id" json:"coach_id"`
	Task        string     `db:"task" json:"task"`
	Priority    Priority   `db:"priority" json:"priority"`
	DueDate     *string    `db:"due_date" json:"due_date,omitempty"`
	Completed   bool       `db:"completed" json:"completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	NudgeSent   bool       `db:"nudge_sent" json:"nudge_sent"`
	NudgeSentAt *time.Time `db:"nudge_sent_at" json:"nudge_sent_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
