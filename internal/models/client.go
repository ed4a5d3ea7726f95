package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ClientStatus is the coaching-relationship state of a client.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientPaused   ClientStatus = "paused"
	ClientFinished ClientStatus = "completed"
	ClientArchived ClientStatus = "archived"
)

// Client is one coaching client, owned by a coach.
type Client struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	CoachID       uuid.UUID      `db:"coach_id" json:"coach_id"`
	FullName      string         `db:"full_name" json:"full_name"`
	Email         string         `db:"email" json:"email"`
	Phone         *string        `db:"phone" json:"phone,omitempty"`
	CoachingType  *string        `db:"coaching_type" json:"coaching_type,omitempty"`
	Goals         pq.StringArray `db:"goals" json:"goals"`
	Status        ClientStatus   `db:"status" json:"status"`
	PortalToken   string         `db:"portal_token" json:"portal_token"`
	IntakeNotes   *string        `db:"intake_notes" json:"intake_notes,omitempty"`
	SessionCount  int            `db:"session_count" json:"session_count"`
	CurrentStreak int            `db:"current_streak" json:"current_streak"`
	LastSessionAt *time.Time     `db:"last_session_at" json:"last_session_at,omitempty"`
	NextSessionAt *time.Time     `db:"next_session_at" json:"next_session_at,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// FirstName returns the client's first name for use in email salutations.
func (c *Client) FirstName() string {
	for i := 0; i < len(c.FullName); i++ {
		if c.FullName[i] == ' ' {
			return c.FullName[:i]
		}
	}
	return c.FullName
}
