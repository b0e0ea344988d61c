package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Decoder extracts text from a single corpus file.
// Each decoder handles one file-format class (plain text, PDF, Word).
type Decoder interface {
	// Format returns the document format this decoder produces.
	Format() domain.Format

	// Extensions returns the file extensions this decoder handles,
	// lower-case with leading dot (e.g. ".pdf").
	Extensions() []string

	// Decode reads the file at path and returns its extracted text.
	// A failure affects only this file; the loader records it as
	// skipped and continues with the rest of the batch.
	Decode(ctx context.Context, path string) (*domain.RawDocument, error)
}
