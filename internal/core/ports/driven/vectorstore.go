package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorStore persists embedded chunks and serves nearest-neighbour
// queries over them. Two interchangeable backends exist: an ephemeral
// in-process store with an on-disk snapshot, and a durable SQLite
// store. Both must rank identical content identically: ascending
// cosine distance, ties broken by insertion order.
type VectorStore interface {
	// Insert appends records for the given chunks and returns the
	// number inserted. Existing records are never overwritten;
	// repeated inserts of the same content accumulate duplicates.
	Insert(ctx context.Context, chunks []domain.Chunk) (int, error)

	// Search returns up to k records nearest to the query vector,
	// nearest first.
	Search(ctx context.Context, vector []float32, k int) ([]domain.VectorRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Persist flushes the store to durable storage. A no-op for
	// backends that are durable at every write.
	Persist(ctx context.Context) error

	// Reset removes every record in the collection. Callers use this
	// for replace-style re-ingestion.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
