package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/coachforge/coachforge-backend/internal/models"
)

// scriptedGenerator returns one canned response per call, in order.
type scriptedGenerator struct {
	responses []string
	errs      []error
	prompts   []string
	calls     int
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testClient() *models.Client {
	return &models.Client{
		FullName: "Jordan Avery",
		Goals:    []string{"get promoted"},
	}
}

const validSummaryJSON = `{
  "summary": "Jordan arrived energized and spent the session mapping out the conversation with their manager about the promotion.",
  "summary_structured": {
    "overview": "Focused session on promotion readiness.",
    "key_themes": ["career growth", "confidence"],
    "breakthroughs": ["named the fear behind delaying the ask"],
    "concerns": [],
    "coaching_techniques_used": ["reframing"]
  },
  "mood_score": 78,
  "energy_score": 82,
  "engagement_score": 90,
  "breakthrough_flagged": true
}`

const validActionsJSON = `[
  {"task": "Draft the promotion pitch", "priority": "high", "due_date_suggestion": "within 1 week"},
  {"task": "Journal daily about confidence triggers", "priority": "medium", "due_date_suggestion": "ongoing"}
]`

const transcript = "[0:00] coach: How are you?\n[0:10] client: Great, ready to apply for the promotion."

func TestRunHappyPath(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{validSummaryJSON, validActionsJSON, "Great session today. Draft the pitch and keep journaling."}}
	p := New(gen, testLogger())

	result, err := p.Run(context.Background(), transcript, testClient(), 3)
	require.NoError(t, err)

	assert.Equal(t, OutcomeParsed, result.Summary.Outcome)
	assert.NotEmpty(t, result.Summary.Summary)
	assert.Equal(t, 78, result.Summary.MoodScore)
	assert.Equal(t, 82, result.Summary.EnergyScore)
	assert.Equal(t, 90, result.Summary.EngagementScore)
	assert.True(t, result.Summary.BreakthroughFlagged)

	assert.Equal(t, OutcomeParsed, result.Actions.Outcome)
	require.Len(t, result.Actions.Items, 2)
	for _, item := range result.Actions.Items {
		assert.True(t, models.Priority(item.Priority).Valid())
	}

	assert.Equal(t, "Great session today. Draft the pitch and keep journaling.", result.FollowupEmailBody)
	assert.Equal(t, 3, gen.calls)
}

func TestRunStageOrdering(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{validSummaryJSON, validActionsJSON, "follow-up"}}
	p := New(gen, testLogger())

	_, err := p.Run(context.Background(), transcript, testClient(), 1)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 3)

	// The follow-up prompt is built from stage A's summary and stage B's items.
	assert.Contains(t, gen.prompts[2], "Jordan arrived energized")
	assert.Contains(t, gen.prompts[2], "Draft the promotion pitch")
	assert.Contains(t, gen.prompts[2], "Journal daily about confidence triggers")
}

func TestRunDegradedSummary(t *testing.T) {
	refusal := "Sorry, I can't help with that."
	gen := &scriptedGenerator{responses: []string{refusal, validActionsJSON, "follow-up body"}}
	p := New(gen, testLogger())

	result, err := p.Run(context.Background(), transcript, testClient(), 1)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDegraded, result.Summary.Outcome)
	assert.Equal(t, refusal, result.Summary.Summary)
	assert.Equal(t, refusal, result.Summary.Structured.Overview)
	assert.Empty(t, result.Summary.Structured.KeyThemes)
	assert.Equal(t, 50, result.Summary.MoodScore)
	assert.Equal(t, 50, result.Summary.EnergyScore)
	assert.Equal(t, 50, result.Summary.EngagementScore)
	assert.False(t, result.Summary.BreakthroughFlagged)

	// Degraded stage A must not block the later stages.
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, OutcomeParsed, result.Actions.Outcome)
}

func TestRunDegradedActions(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{validSummaryJSON, "not json at all", "follow-up body"}}
	p := New(gen, testLogger())

	result, err := p.Run(context.Background(), transcript, testClient(), 1)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDegraded, result.Actions.Outcome)
	assert.Empty(t, result.Actions.Items)
	assert.Equal(t, "follow-up body", result.FollowupEmailBody)
}

func TestRunCodeFencedJSON(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"```json\n" + validSummaryJSON + "\n```",
		"```json\n" + validActionsJSON + "\n```",
		"follow-up body",
	}}
	p := New(gen, testLogger())

	result, err := p.Run(context.Background(), transcript, testClient(), 1)
	require.NoError(t, err)

	assert.Equal(t, OutcomeParsed, result.Summary.Outcome)
	assert.Equal(t, OutcomeParsed, result.Actions.Outcome)
	assert.Len(t, result.Actions.Items, 2)
}

func TestRunGeneratorError(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("connection refused")}}
	p := New(gen, testLogger())

	_, err := p.Run(context.Background(), transcript, testClient(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary stage")
}

func TestParseActionsInvalidPriority(t *testing.T) {
	p := New(&scriptedGenerator{}, testLogger())

	stage := p.parseActions(`[{"task": "x", "priority": "urgent", "due_date_suggestion": "soon"}]`)
	require.Len(t, stage.Items, 1)
	assert.Equal(t, string(models.PriorityMedium), stage.Items[0].Priority)
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"missing defaults to neutral", 0, 50},
		{"below range", -5, 1},
		{"above range", 150, 100},
		{"in range", 73, 73},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampScore(tt.in))
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}
