package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig indicates invalid or missing configuration.
	// Fatal at startup; never retried.
	ErrConfig = errors.New("invalid configuration")

	// ErrChunkConfig indicates invalid chunking parameters
	// (overlap must be non-negative and smaller than chunk size).
	ErrChunkConfig = errors.New("invalid chunking parameters")

	// ErrNoDocuments indicates the ingestion directory yielded no
	// decodable documents. Recoverable by re-pointing the directory.
	ErrNoDocuments = errors.New("no documents found")

	// ErrInvalidQuery indicates an empty or whitespace-only query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrStoreNotReady indicates the vector store has never been
	// populated; ingest must run before answering queries.
	ErrStoreNotReady = errors.New("vector store not ready")

	// ErrEmbedding indicates the embedding backend failed.
	// Fatal to the enclosing call; safe to retry the request later.
	ErrEmbedding = errors.New("embedding failed")

	// ErrBackendUnavailable indicates the generative backend could not
	// be reached or refused the request.
	ErrBackendUnavailable = errors.New("generative backend unavailable")

	// ErrBackendResponse indicates the generative backend returned a
	// response the adapter could not interpret.
	ErrBackendResponse = errors.New("invalid generative backend response")
)
