package driven

import "context"

// LLMService is the generative backend used to answer queries.
// One Generate call issues exactly one network request: no retries,
// no streaming. Transport failures surface as
// domain.ErrBackendUnavailable, malformed responses as
// domain.ErrBackendResponse, so callers can tell "the generator is
// down" apart from "my question was bad".
type LLMService interface {
	// Generate produces a text completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
