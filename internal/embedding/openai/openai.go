// Package openai embeds text through the OpenAI embeddings API (or any
// compatible endpoint).
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"ragh/internal/domain"
	"ragh/internal/embedding"
)

// Requests are batched so one oversized upload does not turn into one
// oversized API call.
const batchSize = 64

// Embedder calls the OpenAI embeddings endpoint.
type Embedder struct {
	client *goopenai.Client
	model  string
}

// Config configures the OpenAI embedder.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// New creates an OpenAI embedder. The API key is read from the configured
// environment variable.
func New(cfg Config) (*Embedder, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key in env %s", domain.ErrInvalidArgument, cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Embedder{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "openai" }

// EmbedTexts embeds the given texts in input order, L2-normalized.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
			Model: goopenai.EmbeddingModel(e.model),
			Input: texts[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("%w: openai embeddings: %v", domain.ErrDownstream, err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("%w: openai returned %d embeddings for %d inputs",
				domain.ErrDownstream, len(resp.Data), end-start)
		}
		for _, d := range resp.Data {
			v := make([]float64, len(d.Embedding))
			for i := range d.Embedding {
				v[i] = float64(d.Embedding[i])
			}
			embedding.L2Normalize(v)
			out = append(out, v)
		}
	}
	return out, nil
}
