package pipeline

import "github.com/coachforge/coachforge-backend/internal/models"

// Outcome tags a stage result as cleanly parsed or degraded to its fallback.
// Callers branch on the tag, never on errors; the fallback values are part of
// the stage contract.
type Outcome string

const (
	OutcomeParsed   Outcome = "parsed"
	OutcomeDegraded Outcome = "degraded"
)

// SummaryStage is the output of the summary-and-scores stage. When degraded,
// Summary and Structured.Overview hold the raw model output, all scores are
// 50 and BreakthroughFlagged is false.
type SummaryStage struct {
	Outcome             Outcome
	Summary             string
	Structured          models.StructuredSummary
	MoodScore           int
	EnergyScore         int
	EngagementScore     int
	BreakthroughFlagged bool
}

// ActionItemDraft is one commitment extracted by the action-items stage,
// before it is owned by a session record.
type ActionItemDraft struct {
	Task              string `json:"task"`
	Priority          string `json:"priority"`
	DueDateSuggestion string `json:"due_date_suggestion"`
}

// ActionsStage is the output of the action-items stage. When degraded the
// item list is empty.
type ActionsStage struct {
	Outcome Outcome
	Items   []ActionItemDraft
}

// Result is the full synthesis payload handed to persistence.
type Result struct {
	Summary           SummaryStage
	Actions           ActionsStage
	FollowupEmailBody string
}
