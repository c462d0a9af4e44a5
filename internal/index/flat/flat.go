// Package flat implements an exact, in-memory vector index: brute-force
// inner product over normalized vectors, with gob persistence.
package flat

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"ragh/internal/domain"
)

// Index is an append-only flat index. Vectors occupy dense internal slots
// in insertion order; the slot -> external id mapping is total and
// injective for the life of the index.
type Index struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float64
	ids     []string
	slots   map[string]int
}

// New creates an empty flat index for vectors of the given width.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidArgument, dim)
	}
	return &Index{dim: dim, slots: make(map[string]int)}, nil
}

// Dimension returns the vector width the index accepts.
func (ix *Index) Dimension() int { return ix.dim }

// Add appends vectors under the given external ids. The batch is validated
// up front and applied atomically: a dimension mismatch or duplicate id
// leaves the index unchanged.
func (ix *Index) Add(vectors [][]float64, ids []string) error {
	if len(vectors) != len(ids) {
		return fmt.Errorf("%w: %d vectors for %d ids", domain.ErrInvalidArgument, len(vectors), len(ids))
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	seen := make(map[string]struct{}, len(ids))
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector %d has width %d, index expects %d", domain.ErrDimensionMismatch, i, len(v), ix.dim)
		}
		id := ids[i]
		if _, ok := ix.slots[id]; ok {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateID, id)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %q repeated within batch", domain.ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	for i, v := range vectors {
		ix.slots[ids[i]] = len(ix.ids)
		ix.ids = append(ix.ids, ids[i])
		ix.vectors = append(ix.vectors, v)
	}
	return nil
}

// Search returns up to topK hits ordered by descending inner-product score,
// ties broken by ascending insertion order. topK is clamped to the index
// size; searching an empty index is an error.
func (ix *Index) Search(query []float64, topK int) ([]domain.Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.vectors) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has width %d, index expects %d", domain.ErrDimensionMismatch, len(query), ix.dim)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	if topK > len(ix.vectors) {
		topK = len(ix.vectors)
	}

	scores := make([]float64, len(ix.vectors))
	for slot := range ix.vectors {
		scores[slot] = dot(ix.vectors[slot], query)
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	hits := make([]domain.Hit, 0, topK)
	for _, slot := range order[:topK] {
		hits = append(hits, domain.Hit{ID: ix.ids[slot], Score: scores[slot]})
	}
	return hits, nil
}

// Count returns the number of vectors in the index.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

type snapshot struct {
	Dim     int
	IDs     []string
	Vectors [][]float64
}

// Save serializes the index to path, writing a temp file and renaming it
// into place so a crash never leaves a truncated artifact.
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	snap := snapshot{Dim: ix.dim, IDs: ix.ids, Vectors: ix.vectors}
	ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load restores the index from path, replacing current contents. A missing
// file is a no-op, not an error.
func (ix *Index) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("decode index %s: %w", path, err)
	}
	if snap.Dim != ix.dim {
		return fmt.Errorf("%w: file dim=%d, index dim=%d", domain.ErrDimensionMismatch, snap.Dim, ix.dim)
	}

	slots := make(map[string]int, len(snap.IDs))
	for i, id := range snap.IDs {
		slots[id] = i
	}
	ix.mu.Lock()
	ix.ids = snap.IDs
	ix.vectors = snap.Vectors
	ix.slots = slots
	ix.mu.Unlock()
	return nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
