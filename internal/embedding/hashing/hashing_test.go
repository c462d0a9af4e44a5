package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedTextsShapeAndNorm(t *testing.T) {
	e := New(128)
	vecs, err := e.EmbedTexts(context.Background(), []string{
		"the quick brown fox jumps over the lazy dog",
		"vector databases index embeddings",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	for _, v := range vecs {
		assert.Len(t, v, 128)
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	}
}

func TestEmbedDeterministic(t *testing.T) {
	e := New(64)
	a, err := e.EmbedTexts(context.Background(), []string{"reproducible text input"})
	require.NoError(t, err)
	b, err := e.EmbedTexts(context.Background(), []string{"reproducible text input"})
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0])
}

func TestEmbedStopwordsOnlyYieldsZeroVector(t *testing.T) {
	e := New(32)
	vecs, err := e.EmbedTexts(context.Background(), []string{"the and of to"})
	require.NoError(t, err)
	for _, x := range vecs[0] {
		assert.Zero(t, x)
	}
}

func TestSimilarTextsScoreHigher(t *testing.T) {
	e := New(DefaultDim)
	vecs, err := e.EmbedTexts(context.Background(), []string{
		"cats chase mice around barns",
		"cats chase mice around houses",
		"quantum entanglement defies locality",
	})
	require.NoError(t, err)

	dot := func(a, b []float64) float64 {
		var s float64
		for i := range a {
			s += a[i] * b[i]
		}
		return s
	}
	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]))
}
