package cli

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/docqa/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/config"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/decoders/docx"
	"github.com/custodia-labs/docqa/internal/decoders/pdf"
	"github.com/custodia-labs/docqa/internal/decoders/plaintext"
	"github.com/custodia-labs/docqa/internal/loader"
)

// buildPipeline assembles the question answering pipeline from config.
// The vector store is passed in because each command picks its own
// backend. The embedder is returned alongside so serve can probe it at
// startup. withLLM is false for ingest-only commands, which never
// generate; asking such a pipeline to answer fails with
// domain.ErrConfig.
func buildPipeline(cfg *config.Config, store driven.VectorStore, withLLM bool) (*services.RagPipeline, *ollama.EmbeddingService, error) {
	docLoader, err := loader.New(
		[]driven.Decoder{plaintext.New(), docx.New(), pdf.New()},
		loader.WithConcurrency(cfg.Concurrency),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("building loader: %w", err)
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, nil, err
	}

	embedder := ollama.NewEmbeddingService(ollama.Config{
		BaseURL: cfg.EmbeddingURL,
		Model:   cfg.EmbeddingModel,
	})

	var llm driven.LLMService
	if withLLM {
		llmCfg, err := gemini.ParseEndpoint(cfg.LLMURL)
		if err != nil {
			return nil, nil, err
		}
		llm, err = gemini.NewLLMService(llmCfg)
		if err != nil {
			return nil, nil, err
		}
	}

	pipeline := services.NewRagPipeline(
		docLoader, splitter, embedder, store, llm,
		services.WithTopK(cfg.TopK),
	)
	return pipeline, embedder, nil
}
