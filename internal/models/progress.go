package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressType classifies a client progress observation.
type ProgressType string

const (
	ProgressMood         ProgressType = "mood"
	ProgressEnergy       ProgressType = "energy"
	ProgressMilestone    ProgressType = "milestone"
	ProgressGoalProgress ProgressType = "goal_progress"
	ProgressNote         ProgressType = "note"
)

// ClientProgress is one scalar observation in a client's time series.
// Append-only; the synthesis pipeline writes one mood and one energy row
// per completed run.
type ClientProgress struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	ClientID  uuid.UUID    `db:"client_id" json:"client_id"`
	SessionID *uuid.UUID   `db:"session_id" json:"session_id,omitempty"`
	Date      time.Time    `db:"date" json:"date"`
	Type      ProgressType `db:"type" json:"type"`
	Value     *int         `db:"value" json:"value,omitempty"`
	Label     *string      `db:"label" json:"label,omitempty"`
	Notes     *string      `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
