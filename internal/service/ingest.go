package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"ragh/internal/domain"
	"ragh/internal/logger"
)

const previewChars = 200

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// IngestService turns one uploaded document into indexed, retrievable
// passages.
type IngestService struct {
	extractor domain.Extractor
	chunker   domain.Chunker
	embedder  domain.Embedder
	index     domain.VectorIndex
	meta      domain.MetadataStore
	limiter   *Limiter
}

// NewIngestService wires an ingestion pipeline.
func NewIngestService(extractor domain.Extractor, chunker domain.Chunker, embedder domain.Embedder, index domain.VectorIndex, meta domain.MetadataStore, limiter *Limiter) *IngestService {
	return &IngestService{extractor: extractor, chunker: chunker, embedder: embedder, index: index, meta: meta, limiter: limiter}
}

// IngestFile extracts, chunks, embeds and indexes one document. Each call
// mints a fresh document id, so re-uploading the same file produces new
// passages instead of overwriting the old ones. An extraction failure is
// reported in the result, not as an error; only pipeline faults (embedding,
// storage) fail the call.
func (s *IngestService) IngestFile(ctx context.Context, filename string, data []byte) (*domain.IngestResult, error) {
	text, err := s.extractor.Extract(filename, data)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailure) {
			logger.Info("ingest: %s rejected: %v", filename, err)
			return &domain.IngestResult{File: filename, Accepted: false, Note: err.Error()}, nil
		}
		return nil, err
	}

	docID := newDocID(filename)
	passages, err := s.chunker.Chunk(text)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		logger.Info("ingest: %s has no extractable text", filename)
		return &domain.IngestResult{File: filename, Accepted: true, PassageCount: 0, Note: "no extractable text found"}, nil
	}

	texts := make([]string, len(passages))
	ids := make([]string, len(passages))
	for i := range passages {
		passages[i].ID = fmt.Sprintf("%s_c%d", docID, i)
		passages[i].DocID = docID
		texts[i] = passages[i].Text
		ids[i] = passages[i].ID
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	s.limiter.Release()
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d passages: %w", len(vectors), len(passages), domain.ErrDownstream)
	}

	// Metadata first. A vector whose id cannot be resolved would be
	// silently dropped at query time, while an orphan metadata row is
	// harmless.
	for i, p := range passages {
		meta := domain.PassageMeta{
			DocID:     docID,
			Source:    filename,
			StartChar: p.StartChar,
			EndChar:   p.EndChar,
			Text:      p.Text,
			Preview:   preview(p.Text),
		}
		if err := s.meta.Put(p.ID, meta); err != nil {
			return nil, fmt.Errorf("store metadata for %s: %w", ids[i], err)
		}
	}
	if err := s.index.Add(vectors, ids); err != nil {
		return nil, err
	}

	logger.Debug("ingest: %s indexed as %s with %d passages", filename, docID, len(passages))
	return &domain.IngestResult{File: filename, Accepted: true, PassageCount: len(passages)}, nil
}

func newDocID(filename string) string {
	hexID := strings.ReplaceAll(uuid.NewString(), "-", "")
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = unsafeNameRe.ReplaceAllString(base, "_")
	if base == "" {
		base = "doc"
	}
	return hexID + "_" + base
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewChars {
		return text
	}
	return string(runes[:previewChars])
}
