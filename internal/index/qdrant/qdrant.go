// Package qdrant implements the vector index contract against a Qdrant
// server over its REST API.
package qdrant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ragh/internal/domain"
)

// Point ids must be UUIDs or unsigned integers in Qdrant, so external ids
// are mapped to deterministic UUIDv5 values under this namespace and the
// original id travels in the payload.
var pointNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Index is a minimal REST client to a Qdrant collection configured for
// cosine distance.
//
// Unlike the flat index, duplicate external ids are not rejected: Qdrant
// upserts by point id, so re-adding an id overwrites its vector. Save and
// Load are no-ops because durability is server-side.
type Index struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// Config configures the Qdrant index client.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New creates a Qdrant index client and ensures the collection exists with
// the given vector width.
func New(cfg Config, dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidArgument, dimension)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	ix := &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  dimension,
		client:     &http.Client{Timeout: timeout},
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 for an existing collection with the same schema.
	if err := ix.putJSON(fmt.Sprintf("%s/collections/%s", ix.url, ix.collection), body); err != nil {
		return nil, err
	}
	return ix, nil
}

// Add upserts vectors under the given external ids.
func (ix *Index) Add(vectors [][]float64, ids []string) error {
	if len(vectors) != len(ids) {
		return fmt.Errorf("%w: %d vectors for %d ids", domain.ErrInvalidArgument, len(vectors), len(ids))
	}
	points := make([]map[string]any, len(ids))
	for i := range ids {
		if len(vectors[i]) != ix.dimension {
			return fmt.Errorf("%w: vector %d has width %d, index expects %d",
				domain.ErrDimensionMismatch, i, len(vectors[i]), ix.dimension)
		}
		points[i] = map[string]any{
			"id":     uuid.NewSHA1(pointNamespace, []byte(ids[i])).String(),
			"vector": vectors[i],
			"payload": map[string]any{
				"external_id": ids[i],
			},
		}
	}
	body := map[string]any{"points": points}
	return ix.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", ix.url, ix.collection), body)
}

// Search returns up to topK hits ordered by descending score.
func (ix *Index) Search(query []float64, topK int) ([]domain.Hit, error) {
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has width %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), ix.dimension)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	if ix.Count() == 0 {
		return nil, domain.ErrEmptyIndex
	}
	req := map[string]any{
		"vector":       query,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := ix.postJSON(fmt.Sprintf("%s/collections/%s/points/search", ix.url, ix.collection), req, &resp); err != nil {
		return nil, err
	}
	hits := make([]domain.Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		id, ok := r.Payload["external_id"].(string)
		if !ok {
			continue
		}
		hits = append(hits, domain.Hit{ID: id, Score: r.Score})
	}
	return hits, nil
}

// Count returns the number of points in the collection, or 0 if the server
// cannot be reached.
func (ix *Index) Count() int {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := ix.postJSON(fmt.Sprintf("%s/collections/%s/points/count", ix.url, ix.collection),
		map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0
	}
	return resp.Result.Count
}

// Save is a no-op: the collection is durable on the server.
func (ix *Index) Save(path string) error { return nil }

// Load is a no-op: the collection is durable on the server.
func (ix *Index) Load(path string) error { return nil }

func (ix *Index) putJSON(url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (ix *Index) postJSON(url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
