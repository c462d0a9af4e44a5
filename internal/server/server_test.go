package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ragh/internal/domain"
)

type fakePipeline struct {
	answer *domain.Answer
	err    error
	lastK  int
}

func (f *fakePipeline) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	f.lastK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type fakeIngestor struct {
	results map[string]*domain.IngestResult
	err     error
}

func (f *fakeIngestor) IngestFile(ctx context.Context, filename string, data []byte) (*domain.IngestResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[filename]; ok {
		return res, nil
	}
	return &domain.IngestResult{File: filename, Accepted: true, PassageCount: 1}, nil
}

type fakeIndex struct{ count int }

func (f *fakeIndex) Add(vectors [][]float64, ids []string) error     { return nil }
func (f *fakeIndex) Search(q []float64, k int) ([]domain.Hit, error) { return nil, nil }
func (f *fakeIndex) Count() int                                      { return f.count }
func (f *fakeIndex) Save(path string) error                          { return nil }
func (f *fakeIndex) Load(path string) error                          { return nil }

func newTestServer(p domain.Pipeline, ing domain.Ingestor, idx domain.VectorIndex) *httptest.Server {
	return httptest.NewServer(NewServer(p, ing, idx, 5, 10).Router())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(&fakePipeline{}, &fakeIngestor{}, &fakeIndex{count: 3})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, true, body["ok"])
	require.Equal(t, float64(3), body["passage_count"])
}

func TestQueryReturnsAnswer(t *testing.T) {
	p := &fakePipeline{answer: &domain.Answer{
		Answer:     "42",
		Retrieved:  []domain.Hit{{ID: "d_c0", Score: 0.9}},
		Provenance: []domain.Provenance{{DocID: "d", StartChar: 0, EndChar: 10}},
	}}
	ts := newTestServer(p, &fakeIngestor{}, &fakeIndex{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/query", "application/json",
		strings.NewReader(`{"query":"what is the answer?","top_k":3}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 3, p.lastK)

	var ans domain.Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ans))
	require.Equal(t, "42", ans.Answer)
	require.Len(t, ans.Retrieved, 1)
	require.Equal(t, "d_c0", ans.Retrieved[0].ID)
	require.Len(t, ans.Provenance, 1)
}

func TestQueryDefaultsTopK(t *testing.T) {
	p := &fakePipeline{answer: &domain.Answer{Answer: "ok"}}
	ts := newTestServer(p, &fakeIngestor{}, &fakeIndex{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/query", "application/json",
		strings.NewReader(`{"query":"q"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 5, p.lastK)
}

func TestQueryRejectsEmptyQuestion(t *testing.T) {
	ts := newTestServer(&fakePipeline{}, &fakeIngestor{}, &fakeIndex{})
	defer ts.Close()

	for _, body := range []string{`{"query":""}`, `{}`, `not json`} {
		resp, err := http.Post(ts.URL+"/v1/query", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestQuerySanitizesDownstreamError(t *testing.T) {
	p := &fakePipeline{err: fmt.Errorf("openai: secret detail: %w", domain.ErrDownstream)}
	ts := newTestServer(p, &fakeIngestor{}, &fakeIndex{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/query", "application/json",
		strings.NewReader(`{"query":"q"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "upstream model call failed", body["error"])
	require.NotContains(t, body["error"], "secret")
}

func uploadRequest(t *testing.T, url string, files map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestUploadIngestsFiles(t *testing.T) {
	ing := &fakeIngestor{results: map[string]*domain.IngestResult{
		"a.txt": {File: "a.txt", Accepted: true, PassageCount: 4},
		"b.pdf": {File: "b.pdf", Accepted: false, Note: "unsupported format"},
	}}
	ts := newTestServer(&fakePipeline{}, ing, &fakeIndex{})
	defer ts.Close()

	resp := uploadRequest(t, ts.URL, map[string]string{"a.txt": "text", "b.pdf": "%PDF"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []domain.IngestResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 2)
	accepted := 0
	for _, r := range body.Results {
		if r.Accepted {
			accepted++
			require.Equal(t, 4, r.PassageCount)
		} else {
			require.Equal(t, "unsupported format", r.Note)
		}
	}
	require.Equal(t, 1, accepted)
}

func TestUploadRequiresFiles(t *testing.T) {
	ts := newTestServer(&fakePipeline{}, &fakeIngestor{}, &fakeIndex{})
	defer ts.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no files here"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(&fakePipeline{}, &fakeIngestor{}, &fakeIndex{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/query")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
