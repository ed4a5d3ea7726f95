package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a coaching session.
type SessionStatus string

const (
	StatusScheduled  SessionStatus = "scheduled"
	StatusInProgress SessionStatus = "in_progress"
	StatusProcessing SessionStatus = "processing"
	StatusCompleted  SessionStatus = "completed"
	StatusCancelled  SessionStatus = "cancelled"
)

// Session represents one coaching encounter between a coach and a client.
type Session struct {
	ID                   uuid.UUID          `db:"id" json:"id"`
	CoachID              uuid.UUID          `db:"coach_id" json:"coach_id"`
	ClientID             uuid.UUID          `db:"client_id" json:"client_id"`
	SessionNumber        int                `db:"session_number" json:"session_number"`
	Status               SessionStatus      `db:"status" json:"status"`
	ScheduledAt          *time.Time         `db:"scheduled_at" json:"scheduled_at,omitempty"`
	StartedAt            *time.Time         `db:"started_at" json:"started_at,omitempty"`
	EndedAt              *time.Time         `db:"ended_at" json:"ended_at,omitempty"`
	DurationSeconds      *int               `db:"duration_seconds" json:"duration_seconds,omitempty"`
	RoomName             *string            `db:"room_name" json:"room_name,omitempty"`
	RoomURL              *string            `db:"room_url" json:"room_url,omitempty"`
	TranscriptRaw        TranscriptEntries  `db:"transcript_raw" json:"transcript_raw,omitempty"`
	TranscriptText       *string            `db:"transcript_text" json:"transcript_text,omitempty"`
	Summary              *string            `db:"summary" json:"summary,omitempty"`
	SummaryStructured    *StructuredSummary `db:"summary_structured" json:"summary_structured,omitempty"`
	MoodScore            *int               `db:"mood_score" json:"mood_score,omitempty"`
	EnergyScore          *int               `db:"energy_score" json:"energy_score,omitempty"`
	EngagementScore      *int               `db:"engagement_score" json:"engagement_score,omitempty"`
	BreakthroughFlagged  bool               `db:"breakthrough_flagged" json:"breakthrough_flagged"`
	AINotes              Metadata           `db:"ai_notes" json:"ai_notes,omitempty"`
	FollowupEmailBody    *string            `db:"followup_email_body" json:"followup_email_body,omitempty"`
	FollowupEmailSent    bool               `db:"followup_email_sent" json:"followup_email_sent"`
	FollowupEmailSentAt  *time.Time         `db:"followup_email_sent_at" json:"followup_email_sent_at,omitempty"`
	PrepBrief            *string            `db:"prep_brief" json:"prep_brief,omitempty"`
	PrepBriefGeneratedAt *time.Time         `db:"prep_brief_generated_at" json:"prep_brief_generated_at,omitempty"`
	CreatedAt            time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `db:"updated_at" json:"updated_at"`
}

// TranscriptEntry is one utterance in a session transcript. Timestamp is an
// elapsed-time label like "12:05" rather than a wall-clock time.
type TranscriptEntry struct {
	Timestamp string `json:"timestamp"`
	Speaker   string `json:"speaker"` // "coach" or "client"
	Text      string `json:"text"`
	Flagged   bool   `json:"flagged,omitempty"`
}

// TranscriptEntries stores the raw transcript as a JSONB column.
type TranscriptEntries []TranscriptEntry

func (t TranscriptEntries) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *TranscriptEntries) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported transcript scan type %T", src)
	}
	return json.Unmarshal(b, t)
}

// Text returns the newline-joined flattened form of the transcript.
func (t TranscriptEntries) Text() string {
	lines := make([]string, 0, len(t))
	for _, e := range t {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", e.Timestamp, e.Speaker, e.Text))
	}
	return strings.Join(lines, "\n")
}

// StructuredSummary is the structured breakdown produced by the synthesis
// pipeline alongside the narrative summary.
type StructuredSummary struct {
	Overview               string   `json:"overview"`
	KeyThemes              []string `json:"key_themes"`
	Breakthroughs          []string `json:"breakthroughs"`
	Concerns               []string `json:"concerns"`
	CoachingTechniquesUsed []string `json:"coaching_techniques_used"`
}

func (s StructuredSummary) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StructuredSummary) Scan(src interface{}) error {
	if src == nil {
		*s = StructuredSummary{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported summary scan type %T", src)
	}
	return json.Unmarshal(b, s)
}

// Metadata is a free-form JSONB column for pipeline bookkeeping (capture
// mode, word count, flagged moments).
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported metadata scan type %T", src)
	}
	return json.Unmarshal(b, m)
}
