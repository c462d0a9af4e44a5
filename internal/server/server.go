// Package server exposes the ingestion and query pipelines over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"ragh/internal/domain"
	"ragh/internal/logger"
)

// Server routes HTTP requests to the ingestion and answering pipelines.
type Server struct {
	pipeline       domain.Pipeline
	ingestor       domain.Ingestor
	index          domain.VectorIndex
	defaultTopK    int
	maxUploadBytes int64
}

// NewServer wires the HTTP surface. defaultTopK applies when a query omits
// top_k; maxUploadMB caps the size of one upload request.
func NewServer(pipeline domain.Pipeline, ingestor domain.Ingestor, index domain.VectorIndex, defaultTopK, maxUploadMB int) *Server {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &Server{
		pipeline:       pipeline,
		ingestor:       ingestor,
		index:          index,
		defaultTopK:    defaultTopK,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writePipelineError maps pipeline faults to status codes without leaking
// upstream details to the client.
func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDownstream):
		logger.Warn("http: downstream failure: %v", err)
		writeError(w, http.StatusBadGateway, "upstream model call failed")
	default:
		logger.Warn("http: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"time_utc":      time.Now().UTC().Format(time.RFC3339),
		"passage_count": s.index.Count(),
	})
}

func (s *Server) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	ans, err := s.pipeline.Answer(r.Context(), req.Query, topK)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files in upload, use multipart field \"files\"")
		return
	}

	results := make([]*domain.IngestResult, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}

		res, err := s.ingestor.IngestFile(r.Context(), fh.Filename, data)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		results = append(results, res)
	}

	logger.Info("http: upload of %d files done", len(results))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ingested",
		"results": results,
	})
}

// Router assembles the HTTP mux.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/v1/query", s.HandleQuery)
	mux.HandleFunc("/upload", s.HandleUpload)
	return mux
}
