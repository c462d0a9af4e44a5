// Package openai generates answers through the OpenAI chat completions
// API (or any compatible endpoint).
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"ragh/internal/domain"
	"ragh/internal/reader"
)

const systemPrompt = "You answer questions using only the provided context. If the context is empty or insufficient, say you do not have enough information."

// Generator calls the OpenAI chat completions endpoint.
type Generator struct {
	client *goopenai.Client
	model  string
}

// Config configures the OpenAI generator.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// New creates an OpenAI generator. The API key is read from the configured
// environment variable.
func New(cfg Config) (*Generator, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key in env %s", domain.ErrInvalidArgument, cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Generator{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Name returns the identifier of this generator implementation.
func (g *Generator) Name() string { return "openai" }

// Generate answers the question conditioned on the ordered contexts.
func (g *Generator) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: reader.BuildPrompt(question, contexts)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai chat: %v", domain.ErrDownstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai chat returned no choices", domain.ErrDownstream)
	}
	return resp.Choices[0].Message.Content, nil
}
