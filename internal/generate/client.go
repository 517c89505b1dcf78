package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/1homsi/buildeval/internal/config"
)

// Completer sends a prompt to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is a Completer backed by an OpenAI-compatible chat completions
// endpoint.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

var _ Completer = (*Client)(nil)

// NewClient needs an API key unless BaseURL points at a self-hosted
// endpoint.
func NewClient(g config.Generation) (*Client, error) {
	if g.APIKey == "" && g.BaseURL == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	cc := openai.DefaultConfig(g.APIKey)
	if g.BaseURL != "" {
		cc.BaseURL = g.BaseURL
	}
	slog.Info("initializing completion client", "model", g.Model, "base_url", cc.BaseURL)
	return &Client{
		client:      openai.NewClientWithConfig(cc),
		model:       g.Model,
		maxTokens:   g.MaxTokens,
		temperature: g.Temperature,
	}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	slog.Debug("completion received",
		"finish_reason", resp.Choices[0].FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}
