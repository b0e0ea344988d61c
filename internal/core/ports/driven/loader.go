package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentLoader walks a directory tree and decodes its files.
type DocumentLoader interface {
	// Load decodes every matching file under root. Per-file decode
	// failures are collected in the result, not returned as an error;
	// an unreadable root directory is an error.
	Load(ctx context.Context, root string) (*LoadResult, error)
}

// LoadResult is the outcome of one load pass.
type LoadResult struct {
	// Documents holds the successfully decoded files, sorted by source
	// path for stable reporting.
	Documents []domain.RawDocument

	// Skipped lists files whose decoder failed, with reasons.
	Skipped []domain.SkippedFile
}
