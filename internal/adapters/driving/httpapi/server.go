// Package httpapi exposes the question answering pipeline over HTTP.
//
// Endpoints:
//   - POST /ingest  (re)index the configured document directory
//   - POST /chat    answer a question against the indexed documents
//   - GET  /healthz liveness probe
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Server serves the pipeline over HTTP. It holds its dependencies
// explicitly rather than relying on package state.
type Server struct {
	pipeline driving.Pipeline
	dataDir  string
	topK     int
	httpSrv  *http.Server
}

// NewServer creates a Server listening on addr. Ingest requests index
// dataDir; chat requests retrieve topK chunks.
func NewServer(addr string, pipeline driving.Pipeline, dataDir string, topK int) *Server {
	s := &Server{
		pipeline: pipeline,
		dataDir:  dataDir,
		topK:     topK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops. It returns nil after a
// clean Shutdown.
func (s *Server) ListenAndServe() error {
	logger.Info("HTTP server listening on %s", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type ingestResponse struct {
	DocumentsLoaded int           `json:"documents_loaded"`
	ChunksCreated   int           `json:"chunks_created"`
	Skipped         []skippedFile `json:"skipped,omitempty"`
}

type skippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "use POST"})
		return
	}

	report, err := s.pipeline.Ingest(r.Context(), s.dataDir, false)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ingestResponse{
		DocumentsLoaded: report.DocumentsLoaded,
		ChunksCreated:   report.ChunksCreated,
	}
	for _, sk := range report.Skipped {
		resp.Skipped = append(resp.Skipped, skippedFile{Path: sk.Path, Reason: sk.Reason})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "use POST"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	result, err := s.pipeline.Answer(r.Context(), req.Query, s.topK)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoDocuments), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrStoreNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrBackendUnavailable), errors.Is(err, domain.ErrBackendResponse),
		errors.Is(err, domain.ErrEmbedding):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	} else {
		logger.Debug("request rejected: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
