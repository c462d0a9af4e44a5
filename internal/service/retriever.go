package service

import (
	"context"
	"fmt"
	"strings"

	"ragh/internal/domain"
	"ragh/internal/logger"
)

// RetrieverService embeds a query, searches the vector index and resolves
// the hits through the metadata store.
type RetrieverService struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	meta     domain.MetadataStore
	limiter  *Limiter
}

// NewRetrieverService wires a retriever. Callers own the top-k default;
// Retrieve rejects a non-positive k.
func NewRetrieverService(embedder domain.Embedder, index domain.VectorIndex, meta domain.MetadataStore, limiter *Limiter) *RetrieverService {
	return &RetrieverService{embedder: embedder, index: index, meta: meta, limiter: limiter}
}

// Retrieve returns up to k passages ranked by similarity to query. Hits
// whose metadata has gone missing are dropped with a warning rather than
// failing the whole query, so the result may be shorter than k even when
// the index returned k hits.
func (s *RetrieverService) Retrieve(ctx context.Context, query string, k int) ([]domain.RankedPassage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d: %w", k, domain.ErrInvalidArgument)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	s.limiter.Release()
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query: %w", len(vectors), domain.ErrDownstream)
	}

	hits, err := s.index.Search(vectors[0], k)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	metas, err := s.meta.GetMany(ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RankedPassage, 0, len(hits))
	for _, h := range hits {
		meta, ok := metas[h.ID]
		if !ok {
			logger.Warn("retrieve: dropping hit %s: no metadata", h.ID)
			continue
		}
		out = append(out, domain.RankedPassage{Hit: h, Meta: meta})
	}
	return out, nil
}
