package ai

import (
	"context"
	"strings"
)

// StubGenerator is a canned-response generator for running without API keys.
// It inspects the prompt for the requested output shape so the pipeline's
// JSON parsing still exercises its normal path in development.
type StubGenerator struct{}

// NewStubGenerator creates a new stub generator
func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

// Name returns the provider name
func (g *StubGenerator) Name() string {
	return "stub"
}

// Generate performs a single completion
func (g *StubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "JSON array"):
		return `[
  {"task": "Journal for ten minutes each morning", "priority": "high", "due_date_suggestion": "within 1 week"},
  {"task": "Schedule a conversation with your manager", "priority": "medium", "due_date_suggestion": "by next session"}
]`, nil
	case strings.Contains(prompt, "JSON response"):
		return `{
  "summary": "This is a stub session summary produced without a configured text-generation provider. The client and coach discussed progress toward the client's stated goals and agreed on concrete next steps.",
  "summary_structured": {
    "overview": "Stub overview of the session.",
    "key_themes": ["progress review", "next steps"],
    "breakthroughs": [],
    "concerns": [],
    "coaching_techniques_used": ["open questions"]
  },
  "mood_score": 70,
  "energy_score": 65,
  "engagement_score": 75,
  "breakthrough_flagged": false
}`, nil
	default:
		return "It was great to connect today. You showed real clarity about what you want next, and the steps we agreed on will keep that momentum going. Take them one at a time and notice what shifts.", nil
	}
}
