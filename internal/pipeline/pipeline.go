// Package pipeline derives coaching artifacts from a finished transcript in
// three sequential text-generation calls: summary and scores, action items,
// follow-up message. Parse failures in the first two stages degrade to
// documented fallback values instead of surfacing as errors; only a failed
// call to the generator itself is returned to the caller.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/coachforge/coachforge-backend/internal/ai"
	"github.com/coachforge/coachforge-backend/internal/models"
)

// Pipeline runs the three synthesis stages against a text generator.
type Pipeline struct {
	gen ai.Generator
	log *logrus.Logger
}

// New creates a pipeline
func New(gen ai.Generator, log *logrus.Logger) *Pipeline {
	return &Pipeline{gen: gen, log: log}
}

// summaryPayload mirrors the JSON object requested from the model in the
// summary stage.
type summaryPayload struct {
	Summary             string                   `json:"summary"`
	SummaryStructured   models.StructuredSummary `json:"summary_structured"`
	MoodScore           int                      `json:"mood_score"`
	EnergyScore         int                      `json:"energy_score"`
	EngagementScore     int                      `json:"engagement_score"`
	BreakthroughFlagged bool                     `json:"breakthrough_flagged"`
}

// Run executes the stages in order. A returned error means a generator call
// failed; the caller is responsible for driving the session to a terminal
// state regardless.
func (p *Pipeline) Run(ctx context.Context, transcript string, client *models.Client, sessionNumber int) (*Result, error) {
	// Stage A: summary + scores
	summaryRaw, err := p.gen.Generate(ctx, buildSessionSummaryPrompt(transcript, client, sessionNumber))
	if err != nil {
		return nil, fmt.Errorf("summary stage: %w", err)
	}
	summary := p.parseSummary(summaryRaw)

	// Stage B: action items
	actionsRaw, err := p.gen.Generate(ctx, buildActionItemsPrompt(transcript, client))
	if err != nil {
		return nil, fmt.Errorf("action items stage: %w", err)
	}
	actions := p.parseActions(actionsRaw)

	// Stage C: follow-up email, grounded in A's summary and B's items
	followup, err := p.gen.Generate(ctx, buildFollowUpEmailPrompt(client, summary.Summary, actions.Items))
	if err != nil {
		return nil, fmt.Errorf("follow-up stage: %w", err)
	}

	return &Result{
		Summary:           summary,
		Actions:           actions,
		FollowupEmailBody: strings.TrimSpace(followup),
	}, nil
}

func (p *Pipeline) parseSummary(raw string) SummaryStage {
	var payload summaryPayload
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		p.log.WithError(err).Warn("summary stage returned unparseable output, using degraded result")
		return SummaryStage{
			Outcome: OutcomeDegraded,
			Summary: raw,
			Structured: models.StructuredSummary{
				Overview:               raw,
				KeyThemes:              []string{},
				Breakthroughs:          []string{},
				Concerns:               []string{},
				CoachingTechniquesUsed: []string{},
			},
			MoodScore:           50,
			EnergyScore:         50,
			EngagementScore:     50,
			BreakthroughFlagged: false,
		}
	}

	return SummaryStage{
		Outcome:             OutcomeParsed,
		Summary:             payload.Summary,
		Structured:          payload.SummaryStructured,
		MoodScore:           clampScore(payload.MoodScore),
		EnergyScore:         clampScore(payload.EnergyScore),
		EngagementScore:     clampScore(payload.EngagementScore),
		BreakthroughFlagged: payload.BreakthroughFlagged,
	}
}

func (p *Pipeline) parseActions(raw string) ActionsStage {
	var items []ActionItemDraft
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &items); err != nil {
		p.log.WithError(err).Warn("action items stage returned unparseable output, using empty list")
		return ActionsStage{Outcome: OutcomeDegraded, Items: []ActionItemDraft{}}
	}

	for i := range items {
		if !models.Priority(items[i].Priority).Valid() {
			items[i].Priority = string(models.PriorityMedium)
		}
	}

	return ActionsStage{Outcome: OutcomeParsed, Items: items}
}

// GeneratePrepBrief produces a pre-session brief from recent session context.
func (p *Pipeline) GeneratePrepBrief(ctx context.Context, client *models.Client, recent []PreviousSession, openItems []*models.ActionItem) (string, error) {
	brief, err := p.gen.Generate(ctx, buildPrepBriefPrompt(client, recent, openItems))
	if err != nil {
		return "", fmt.Errorf("prep brief: %w", err)
	}
	return strings.TrimSpace(brief), nil
}

// GenerateNudge writes a short nudge message about one open action item.
func (p *Pipeline) GenerateNudge(ctx context.Context, client *models.Client, item *models.ActionItem) (string, error) {
	days := int(time.Since(item.CreatedAt).Hours() / 24)
	msg, err := p.gen.Generate(ctx, buildNudgePrompt(client, item, days))
	if err != nil {
		return "", fmt.Errorf("nudge: %w", err)
	}
	return strings.TrimSpace(msg), nil
}

// stripCodeFences removes markdown code-fence wrapping that models add around
// JSON despite instructions.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// clampScore pins a model-reported score to [1,100]. A missing field comes
// through as zero and falls back to neutral.
func clampScore(n int) int {
	switch {
	case n == 0:
		return 50
	case n < 1:
		return 1
	case n > 100:
		return 100
	default:
		return n
	}
}
