// Package generator calls an OpenAI-compatible chat-completion API to write
// character backstories and scenario continuations.
package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"immortal-stories/internal/models"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// backstoryFallback is returned when the model produces an empty backstory.
// Absence of a completion is "generation unavailable", not a hard failure.
const backstoryFallback = "A mysterious past shrouds this character..."

// Client wraps the chat-completion API.
type Client struct {
	openaiClient *openai.Client
	model        string
	logger       *zap.Logger
}

// NewClient creates a generation client. baseURL overrides the API host when
// non-empty (for OpenAI-compatible providers and tests).
func NewClient(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &Client{
		openaiClient: openai.NewClientWithConfig(config),
		model:        model,
		logger:       logger.Named("Generator"),
	}
}

// Backstory generates a 2-3 paragraph character backstory. An empty
// completion falls back to a fixed line rather than failing the caller.
func (c *Client) Backstory(ctx context.Context, world, characterName, origin string) (string, error) {
	content, err := c.complete(ctx, backstorySystemPrompt, backstoryPrompt(world, characterName, origin), 250)
	if err != nil {
		c.logger.Warn("Backstory generation failed",
			zap.Error(err),
			zap.String("world", world),
			zap.String("characterName", characterName),
		)
		return "", fmt.Errorf("backstory generation failed: %w", err)
	}
	if content == "" {
		c.logger.Warn("Backstory generation returned empty completion, using fallback")
		return backstoryFallback, nil
	}
	return content, nil
}

// Continue narrates the next scenario beat reacting to the player's action.
// An empty completion returns models.ErrGenerationUnavailable; callers treat
// that as "generation unavailable", never as fatal.
func (c *Client) Continue(ctx context.Context, s *models.Story, action string) (string, error) {
	content, err := c.complete(ctx, continueSystemPrompt, continuePrompt(s, action), 400)
	if err != nil {
		c.logger.Warn("Story continuation failed", zap.Error(err), zap.String("story", s.Key()))
		return "", fmt.Errorf("story continuation failed: %w", err)
	}
	if content == "" {
		return "", models.ErrGenerationUnavailable
	}
	return content, nil
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := c.openaiClient.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Temperature: 0.9,
			MaxTokens:   maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
