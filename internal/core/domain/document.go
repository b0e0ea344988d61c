package domain

// Format identifies the source file format of a raw document.
type Format string

const (
	// FormatPDF is a PDF document.
	FormatPDF Format = "pdf"

	// FormatWord is a Word document (.doc or .docx).
	FormatWord Format = "word"

	// FormatText is a plain text document.
	FormatText Format = "text"
)

// RawDocument is the decoded text of a single corpus file.
// It is produced by the loader and discarded after chunking.
type RawDocument struct {
	// Text is the full extracted text content.
	Text string

	// Source is the original location (file path or URI).
	Source string

	// Format is the source file format.
	Format Format
}

// Chunk is a bounded, overlapping substring of a source document.
// It is the unit of retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// Source is the path of the document this chunk came from.
	Source string

	// Sequence is the ordinal position within the source document,
	// starting at 0 per source.
	Sequence int

	// Embedding is the vector representation. Empty until embedded.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// VectorRecord is the persisted form of a chunk inside a vector store.
// Identifiers are assigned by the store and never reused.
type VectorRecord struct {
	// ID is the store-assigned identifier.
	ID string

	// Vector is the stored embedding.
	Vector []float32

	// Text is the chunk content.
	Text string

	// Metadata carries at least the "source" key.
	Metadata map[string]any
}

// Source returns the source path recorded in the record metadata,
// or the empty string when absent.
func (r VectorRecord) SourcePath() string {
	if r.Metadata == nil {
		return ""
	}
	if s, ok := r.Metadata["source"].(string); ok {
		return s
	}
	return ""
}

// QueryResult is the outcome of answering a single query.
// Transient; never persisted.
type QueryResult struct {
	// Answer is the generated answer text.
	Answer string

	// Sources lists the distinct source paths of the retrieved chunks,
	// in first-retrieved order.
	Sources []string
}

// SkippedFile records a file the loader could not decode.
type SkippedFile struct {
	// Path is the file that failed.
	Path string

	// Reason is a human-readable failure description.
	Reason string
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// DocumentsLoaded is the number of files successfully decoded.
	DocumentsLoaded int

	// ChunksCreated is the number of chunks embedded and inserted.
	ChunksCreated int

	// Skipped lists files that failed to decode.
	Skipped []SkippedFile
}
