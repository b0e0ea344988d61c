package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestParseEndpoint(t *testing.T) {
	t.Run("splits base URL and key", func(t *testing.T) {
		cfg, err := ParseEndpoint("https://example.com/v1/models/gemma:generateContent?key=secret123")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/v1/models/gemma:generateContent", cfg.EndpointURL)
		assert.Equal(t, "secret123", cfg.APIKey)
	})

	t.Run("missing key is a config error", func(t *testing.T) {
		_, err := ParseEndpoint("https://example.com/generate")
		assert.ErrorIs(t, err, domain.ErrConfig)
	})

	t.Run("missing host is a config error", func(t *testing.T) {
		_, err := ParseEndpoint("/just/a/path?key=k")
		assert.ErrorIs(t, err, domain.ErrConfig)
	})
}

func newService(t *testing.T, srvURL string) *LLMService {
	t.Helper()
	s, err := NewLLMService(Config{EndpointURL: srvURL, APIKey: "k", RequestsPerSecond: 1000})
	require.NoError(t, err)
	return s
}

func TestGenerate(t *testing.T) {
	t.Run("returns first candidate text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "k", r.URL.Query().Get("key"))

			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			assert.Equal(t, "what is up", req.Contents[0].Parts[0].Text)

			resp := map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]string{{"text": "not much"}}}},
				},
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))
		defer srv.Close()

		answer, err := newService(t, srv.URL).Generate(context.Background(), "what is up")
		require.NoError(t, err)
		assert.Equal(t, "not much", answer)
	})

	t.Run("transport failure is BackendUnavailable", func(t *testing.T) {
		s := newService(t, "http://127.0.0.1:1")
		_, err := s.Generate(context.Background(), "hi")
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	})

	t.Run("server error is BackendUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := newService(t, srv.URL).Generate(context.Background(), "hi")
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	})

	t.Run("malformed body is BackendResponseInvalid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("this is not json"))
		}))
		defer srv.Close()

		_, err := newService(t, srv.URL).Generate(context.Background(), "hi")
		assert.ErrorIs(t, err, domain.ErrBackendResponse)
	})

	t.Run("empty candidates is BackendResponseInvalid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		}))
		defer srv.Close()

		_, err := newService(t, srv.URL).Generate(context.Background(), "hi")
		assert.ErrorIs(t, err, domain.ErrBackendResponse)
	})
}

func TestNewLLMService_Validation(t *testing.T) {
	_, err := NewLLMService(Config{APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = NewLLMService(Config{EndpointURL: "https://example.com"})
	assert.ErrorIs(t, err, domain.ErrConfig)
}
