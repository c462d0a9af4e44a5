// Package index provides the vector index backends. An index owns vectors
// and external ids only; passage attributes live in the metadata store
// keyed by the same ids.
package index

import "ragh/internal/domain"

// Index persists embedding vectors and supports nearest-neighbor search by
// inner product over normalized vectors.
type Index interface {
	Add(vectors [][]float64, ids []string) error
	Search(query []float64, topK int) ([]domain.Hit, error)
	Count() int
	Save(path string) error
	Load(path string) error
}
