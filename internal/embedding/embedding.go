// Package embedding provides the embedding collaborator implementations.
package embedding

import (
	"context"
	"math"
)

// Embedder converts texts into fixed-width, L2-normalized vectors, one per
// input, in input order.
type Embedder interface {
	Name() string
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// L2Normalize scales v to unit length in place. A zero vector is left
// unchanged.
func L2Normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}
