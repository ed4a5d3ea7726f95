package models

import (
	"time"

	"github.com/google/uuid"
)

// Coach is an account holder running a coaching practice.
type Coach struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	FullName              string    `db:"full_name" json:"full_name"`
	Email                 string    `db:"email" json:"email"`
	PasswordHash          string    `db:"password_hash" json:"-"`
	CoachingType          *string   `db:"coaching_type" json:"coaching_type,omitempty"`
	Timezone              string    `db:"timezone" json:"timezone"`
	SessionCountThisMonth int       `db:"session_count_this_month" json:"session_count_this_month"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}
