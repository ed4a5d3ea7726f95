package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
	"github.com/coachforge/coachforge-backend/internal/config"
)

// OpenAIGenerator implements Generator using the OpenAI chat completions API
type OpenAIGenerator struct {
	config config.AIConfig
	client *openai.Client
}

// NewOpenAIGenerator creates a new OpenAI generator
func NewOpenAIGenerator(cfg config.AIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &OpenAIGenerator{
		config: cfg,
		client: openai.NewClient(cfg.APIKey),
	}, nil
}

// Name returns the provider name
func (g *OpenAIGenerator) Name() string {
	return "openai"
}

// Generate performs a single completion
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.config.Model
	if model == "" {
		model = openai.GPT4o
	}

	maxTokens := g.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
