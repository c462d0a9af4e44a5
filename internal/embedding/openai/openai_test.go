package openai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ragh/internal/domain"
)

func fakeEmbeddingsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			// Unnormalized on purpose, the client must normalize.
			data[i] = map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float64{3, 4, 0},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
		})
	})
	return httptest.NewServer(mux)
}

func newTestEmbedder(t *testing.T, baseURL string) *Embedder {
	t.Helper()
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	e, err := New(Config{BaseURL: baseURL, APIKeyEnv: "TEST_OPENAI_KEY"})
	require.NoError(t, err)
	return e
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("MISSING_KEY_ENV", "")
	_, err := New(Config{APIKeyEnv: "MISSING_KEY_ENV"})
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestEmbedTextsNormalizes(t *testing.T) {
	ts := fakeEmbeddingsServer(t)
	defer ts.Close()
	e := newTestEmbedder(t, ts.URL)

	vecs, err := e.EmbedTexts(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	for _, v := range vecs {
		require.Len(t, v, 3)
		norm := 0.0
		for _, x := range v {
			norm += x * x
		}
		require.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	}
	require.InDelta(t, 0.6, vecs[0][0], 1e-9)
	require.InDelta(t, 0.8, vecs[0][1], 1e-9)
}

func TestEmbedTextsWrapsDownstreamFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()
	e := newTestEmbedder(t, ts.URL)

	_, err := e.EmbedTexts(context.Background(), []string{"alpha"})
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrDownstream))
}
