// Package ai provides the text-generation boundary used by the synthesis
// pipeline. Every provider is an opaque prompt-in, text-out completion; JSON
// extraction and fallback handling live in the pipeline, not here.
package ai

import (
	"context"
	"fmt"

	"github.com/coachforge/coachforge-backend/internal/config"
)

// Generator produces a text completion for a prompt.
type Generator interface {
	// Name returns the provider name
	Name() string

	// Generate performs a single completion
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator builds the configured provider.
func NewGenerator(cfg config.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicGenerator(cfg)
	case "openai":
		return NewOpenAIGenerator(cfg)
	case "stub", "":
		return NewStubGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.Provider)
	}
}
