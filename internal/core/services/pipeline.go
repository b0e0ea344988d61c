package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure RagPipeline implements the interface.
var _ driving.Pipeline = (*RagPipeline)(nil)

// DefaultTopK is the number of chunks retrieved per query when the
// caller does not choose one.
const DefaultTopK = 4

// promptTemplate grounds the generator in the retrieved context.
// %s placeholders: context block, question.
const promptTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

// contextSeparator joins retrieved chunk texts inside the prompt.
const contextSeparator = "\n\n"

// RagPipeline orchestrates ingestion and question answering. It holds
// no state beyond its component references and the vector store it is
// bound to, so concurrent Answer calls are safe.
type RagPipeline struct {
	loader   driven.DocumentLoader
	splitter Splitter
	embedder driven.EmbeddingService
	store    driven.VectorStore
	llm      driven.LLMService
	topK     int
}

// Splitter chunks loaded documents. Satisfied by chunker.Splitter.
type Splitter interface {
	Split(docs []domain.RawDocument) []domain.Chunk
}

// Option configures the pipeline.
type Option func(*RagPipeline)

// WithTopK sets the default number of retrieved chunks per query.
func WithTopK(k int) Option {
	return func(p *RagPipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// NewRagPipeline creates a pipeline over the given components.
func NewRagPipeline(
	loader driven.DocumentLoader,
	splitter Splitter,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	opts ...Option,
) *RagPipeline {
	p := &RagPipeline{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		llm:      llm,
		topK:     DefaultTopK,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest loads, chunks, embeds and stores every decodable document
// under dir. Not idempotent at the content level: re-ingesting an
// unchanged directory accumulates duplicate records unless replace is
// set, which empties the collection first.
func (p *RagPipeline) Ingest(ctx context.Context, dir string, replace bool) (*domain.IngestReport, error) {
	loaded, err := p.loader.Load(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	if len(loaded.Documents) == 0 {
		return nil, fmt.Errorf("%w: directory %s", domain.ErrNoDocuments, dir)
	}

	chunks := p.splitter.Split(loaded.Documents)
	logger.Info("pipeline: %d documents split into %d chunks", len(loaded.Documents), len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if replace {
		if err := p.store.Reset(ctx); err != nil {
			return nil, fmt.Errorf("resetting collection: %w", err)
		}
	}

	inserted, err := p.store.Insert(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("inserting records: %w", err)
	}
	if err := p.store.Persist(ctx); err != nil {
		return nil, fmt.Errorf("persisting store: %w", err)
	}

	logger.Info("pipeline: inserted %d records", inserted)
	return &domain.IngestReport{
		DocumentsLoaded: len(loaded.Documents),
		ChunksCreated:   inserted,
		Skipped:         loaded.Skipped,
	}, nil
}

// Answer embeds the query, retrieves the k nearest chunks, and asks
// the generative backend for an answer grounded in them. Failures
// from embedding, search and generation propagate untranslated.
func (p *RagPipeline) Answer(ctx context.Context, query string, k int) (*domain.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidQuery)
	}
	if p.llm == nil {
		return nil, fmt.Errorf("%w: no generative backend configured", domain.ErrConfig)
	}
	if k <= 0 {
		k = p.topK
	}

	count, err := p.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking store: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: ingest documents first", domain.ErrStoreNotReady)
	}

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	records, err := p.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}
	logger.Debug("pipeline: retrieved %d chunks for query", len(records))

	prompt := buildPrompt(records, query)
	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &domain.QueryResult{
		Answer:  answer,
		Sources: dedupeSources(records),
	}, nil
}

// buildPrompt stitches the retrieved chunk texts, in search-result
// order, and the question into the instruction template.
func buildPrompt(records []domain.VectorRecord, query string) string {
	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].Text
	}
	return fmt.Sprintf(promptTemplate, strings.Join(texts, contextSeparator), query)
}

// dedupeSources collects the distinct source paths over the retrieved
// records, keeping first-retrieved order.
func dedupeSources(records []domain.VectorRecord) []string {
	seen := make(map[string]bool, len(records))
	var sources []string
	for i := range records {
		source := records[i].SourcePath()
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true
		sources = append(sources, source)
	}
	return sources
}
