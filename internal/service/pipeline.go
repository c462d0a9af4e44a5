package service

import (
	"context"
	"errors"

	"ragh/internal/domain"
	"ragh/internal/logger"
)

// PipelineService answers a question grounded in retrieved passages.
type PipelineService struct {
	retriever domain.Retriever
	generator domain.Generator
	limiter   *Limiter
}

// NewPipelineService wires retrieval and generation into a question
// answering pipeline.
func NewPipelineService(retriever domain.Retriever, generator domain.Generator, limiter *Limiter) *PipelineService {
	return &PipelineService{retriever: retriever, generator: generator, limiter: limiter}
}

// Answer retrieves topK passages and conditions the generator on them, in
// score order. The generator is invoked even when retrieval came back
// empty, including when the index holds no vectors at all; it is the
// generator's job to say it found nothing.
func (s *PipelineService) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	ranked, err := s.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyIndex) {
			return nil, err
		}
		logger.Info("answer: index is empty, generating without context")
		ranked = nil
	}

	contexts := make([]string, len(ranked))
	hits := make([]domain.Hit, len(ranked))
	prov := make([]domain.Provenance, len(ranked))
	for i, r := range ranked {
		contexts[i] = r.Meta.Text
		hits[i] = r.Hit
		prov[i] = domain.Provenance{DocID: r.Meta.DocID, StartChar: r.Meta.StartChar, EndChar: r.Meta.EndChar}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	text, err := s.generator.Generate(ctx, question, contexts)
	s.limiter.Release()
	if err != nil {
		return nil, err
	}

	return &domain.Answer{Answer: text, Retrieved: hits, Provenance: prov}, nil
}
