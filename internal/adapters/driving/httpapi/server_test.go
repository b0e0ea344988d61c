package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockPipeline implements driving.Pipeline for handler tests.
type mockPipeline struct {
	ingestReport *domain.IngestReport
	ingestErr    error
	answerResult *domain.QueryResult
	answerErr    error

	lastDir   string
	lastQuery string
	lastK     int
}

func (m *mockPipeline) Ingest(_ context.Context, dir string, _ bool) (*domain.IngestReport, error) {
	m.lastDir = dir
	return m.ingestReport, m.ingestErr
}

func (m *mockPipeline) Answer(_ context.Context, query string, k int) (*domain.QueryResult, error) {
	m.lastQuery = query
	m.lastK = k
	return m.answerResult, m.answerErr
}

func newTestServer(p *mockPipeline) *Server {
	return NewServer(":0", p, "/data", 4)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat_Success(t *testing.T) {
	p := &mockPipeline{
		answerResult: &domain.QueryResult{
			Answer:  "Paris is the capital of France.",
			Sources: []string{"docs/france.txt"},
		},
	}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"query": "What is the capital of France?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Paris is the capital of France.", resp.Answer)
	assert.Equal(t, []string{"docs/france.txt"}, resp.Sources)
	assert.Equal(t, "What is the capital of France?", p.lastQuery)
	assert.Equal(t, 4, p.lastK)
}

func TestHandleChat_EmptyQuery(t *testing.T) {
	p := &mockPipeline{answerErr: domain.ErrInvalidQuery}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"query": ""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_NoDocuments(t *testing.T) {
	p := &mockPipeline{answerErr: domain.ErrNoDocuments}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"query": "anything"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleChat_StoreNotReady(t *testing.T) {
	p := &mockPipeline{answerErr: domain.ErrStoreNotReady}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"query": "anything"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleChat_BackendDown(t *testing.T) {
	p := &mockPipeline{answerErr: domain.ErrBackendUnavailable}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"query": "anything"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	s := newTestServer(&mockPipeline{})

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"query": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_GetNotAllowed(t *testing.T) {
	s := newTestServer(&mockPipeline{})

	rec := doRequest(t, s, http.MethodGet, "/chat", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleIngest_Success(t *testing.T) {
	p := &mockPipeline{
		ingestReport: &domain.IngestReport{DocumentsLoaded: 3, ChunksCreated: 42},
	}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/ingest", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.DocumentsLoaded)
	assert.Equal(t, 42, resp.ChunksCreated)
	assert.Equal(t, "/data", p.lastDir)
}

func TestHandleIngest_EmptyDirectory(t *testing.T) {
	p := &mockPipeline{ingestErr: domain.ErrNoDocuments}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/ingest", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleIngest_ReportsSkippedFiles(t *testing.T) {
	p := &mockPipeline{
		ingestReport: &domain.IngestReport{
			DocumentsLoaded: 1,
			ChunksCreated:   5,
			Skipped:         []domain.SkippedFile{{Path: "bad.pdf", Reason: "corrupt"}},
		},
	}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/ingest", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "bad.pdf", resp.Skipped[0].Path)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&mockPipeline{})

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestErrorBodyShape(t *testing.T) {
	p := &mockPipeline{answerErr: domain.ErrStoreNotReady}
	s := newTestServer(p)

	rec := doRequest(t, s, http.MethodPost, "/chat", `{"query": "anything"}`)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}
