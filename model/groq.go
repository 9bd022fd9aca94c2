package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"docchat/types"
)

const (
	DefaultBaseURL   = "https://api.groq.com/openai/v1"
	DefaultModel     = "llama-3.3-70b-versatile"
	DefaultMaxTokens = 1024
)

// ErrEmptyReply is returned when the model produced no usable text.
var ErrEmptyReply = errors.New("model returned an empty reply")

// Generator produces an answer for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GroqGenerator talks to Groq's OpenAI-compatible chat completion API.
type GroqGenerator struct {
	client    openai.Client
	model     string
	maxTokens int64
	logger    *slog.Logger
}

func NewGroqGenerator(cfg types.Config) *GroqGenerator {
	return &GroqGenerator{
		client: openai.NewClient(
			option.WithAPIKey(cfg.GroqAPIKey),
			option.WithBaseURL(cfg.GroqBaseURL),
		),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		logger:    slog.Default(),
	}
}

// Generate submits the prompt with the fixed generation budget and
// extracts the first reply.
func (g *GroqGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:     openai.ChatModel(g.model),
		MaxTokens: openai.Int(g.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	g.logger.Info("LLM answer received", "took", time.Since(start))

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
