// Package gemini provides the generative backend adapter for a
// Gemini/Gemma-style REST endpoint. The endpoint is supplied as a
// single URL of the form scheme://host/path?key=API_KEY; the adapter
// separates the base endpoint from the key at construction time.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultTimeout = 120 * time.Second

	// DefaultRequestsPerSecond paces outgoing generation calls.
	// Conservative; hosted Gemini endpoints throttle well above this.
	DefaultRequestsPerSecond = 2.0

	// DefaultBurst is the rate limiter burst size.
	DefaultBurst = 4
)

// Config holds configuration for the generative backend.
type Config struct {
	// EndpointURL is the base endpoint without the key query parameter.
	EndpointURL string

	// APIKey authenticates requests; sent as the key query parameter.
	APIKey string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond overrides the request pacing (default: 2).
	RequestsPerSecond float64
}

// ParseEndpoint splits a full generator URL (scheme://host/path?key=K)
// into a Config. A missing key is a configuration error.
func ParseEndpoint(raw string) (Config, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%w: parsing generator URL: %v", domain.ErrConfig, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("%w: generator URL %q must include scheme and host", domain.ErrConfig, raw)
	}

	key := parsed.Query().Get("key")
	if key == "" {
		return Config{}, fmt.Errorf("%w: generator URL is missing the key query parameter", domain.ErrConfig)
	}

	return Config{
		EndpointURL: fmt.Sprintf("%s://%s%s", parsed.Scheme, parsed.Host, parsed.Path),
		APIKey:      key,
	}, nil
}

// LLMService calls a Gemini-style generateContent endpoint.
// One Generate call is one network request: no retries, no streaming.
type LLMService struct {
	client   *http.Client
	limiter  *rate.Limiter
	endpoint string
	apiKey   string
}

// generateRequest is the Gemini API request format.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the Gemini API response format.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewLLMService creates a new generative backend service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.EndpointURL == "" {
		return nil, fmt.Errorf("%w: generator endpoint URL is required", domain.ErrConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: generator API key is required", domain.ErrConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), DefaultBurst),
		endpoint: cfg.EndpointURL,
		apiKey:   cfg.APIKey,
	}, nil
}

// Generate produces a text completion for the prompt.
// Transport failures and non-2xx statuses surface as
// domain.ErrBackendUnavailable; undecodable or empty responses as
// domain.ErrBackendResponse.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.endpoint+"?key="+url.QueryEscape(s.apiKey),
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: generator returned status %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", domain.ErrBackendResponse, err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: response contains no candidates", domain.ErrBackendResponse)
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// ModelName returns the endpoint path as the model identifier; the
// model is chosen by the endpoint, not by this adapter.
func (s *LLMService) ModelName() string {
	return s.endpoint
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
