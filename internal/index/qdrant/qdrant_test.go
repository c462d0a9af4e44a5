package qdrant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQdrant answers the subset of the REST API the client uses.
type fakeQdrant struct {
	points map[string]map[string]any
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/collections/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/collections/test/points", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Points []map[string]any `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, p := range body.Points {
			f.points[p["id"].(string)] = p
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/collections/test/points/count", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": len(f.points)}})
	})
	mux.HandleFunc("/collections/test/points/search", func(w http.ResponseWriter, r *http.Request) {
		results := []map[string]any{}
		for _, p := range f.points {
			results = append(results, map[string]any{
				"score":   0.9,
				"payload": p["payload"],
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"result": results})
	})
	return mux
}

func TestQdrantAddAndSearch(t *testing.T) {
	fake := &fakeQdrant{points: map[string]map[string]any{}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	ix, err := New(Config{URL: srv.URL, Collection: "test"}, 2)
	require.NoError(t, err)

	require.NoError(t, ix.Add([][]float64{{1, 0}}, []string{"doc_c0"}))
	assert.Equal(t, 1, ix.Count())

	// Point ids are UUIDs derived from the external id, never the raw id.
	for id := range fake.points {
		assert.NotEqual(t, "doc_c0", id)
		assert.Len(t, strings.Split(id, "-"), 5)
	}

	hits, err := ix.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc_c0", hits[0].ID, "external id resolves from the payload")
	assert.InDelta(t, 0.9, hits[0].Score, 1e-9)
}

func TestQdrantAddDeterministicPointIDs(t *testing.T) {
	fake := &fakeQdrant{points: map[string]map[string]any{}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	ix, err := New(Config{URL: srv.URL, Collection: "test"}, 2)
	require.NoError(t, err)

	require.NoError(t, ix.Add([][]float64{{1, 0}}, []string{"same-id"}))
	require.NoError(t, ix.Add([][]float64{{0, 1}}, []string{"same-id"}))
	assert.Equal(t, 1, ix.Count(), "re-adding an external id upserts the same point")
}
