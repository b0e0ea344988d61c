package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Pipeline answers natural-language questions from a private document
// corpus. Both the CLI and the HTTP service drive this interface.
type Pipeline interface {
	// Ingest loads, chunks, embeds and stores every decodable document
	// under dir. Returns domain.ErrNoDocuments when nothing decodes.
	// When replace is true the bound collection is emptied first;
	// otherwise repeated ingestion accumulates duplicate records.
	Ingest(ctx context.Context, dir string, replace bool) (*domain.IngestReport, error)

	// Answer retrieves the k most relevant chunks for query and asks
	// the generative backend for an answer grounded in them.
	// k <= 0 selects the configured default.
	Answer(ctx context.Context, query string, k int) (*domain.QueryResult, error)
}
