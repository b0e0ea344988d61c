package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/docqa/internal/config"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var (
	chatDataDir      string
	chatLLMURL       string
	chatSnapshotDir  string
	chatChunkSize    int
	chatChunkOverlap int
	chatTopK         int
	chatConcurrency  int
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Index a directory and answer questions interactively",
	Long: `Indexes every supported document under --data-dir into an in-memory
vector store, then reads questions from stdin until "exit".

The generative backend URL carries its API key as a query parameter:

  docqa chat --data-dir ./docs --llm-url "https://host/v1/generate?key=K"`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatDataDir, "data-dir", "", "directory of documents to index")
	chatCmd.Flags().StringVar(&chatLLMURL, "llm-url", "", "generative backend URL including ?key=")
	chatCmd.Flags().StringVar(&chatSnapshotDir, "snapshot-dir", "", "directory for vector store snapshots (optional)")
	chatCmd.Flags().IntVar(&chatChunkSize, "chunk-size", config.DefaultChunkSize, "chunk size in characters")
	chatCmd.Flags().IntVar(&chatChunkOverlap, "chunk-overlap", config.DefaultChunkOverlap, "overlap between consecutive chunks")
	chatCmd.Flags().IntVar(&chatTopK, "top-k", config.DefaultTopK, "retrieved chunks per question")
	chatCmd.Flags().IntVar(&chatConcurrency, "concurrency", config.DefaultConcurrency, "parallel document decodes")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	applyChatFlags(cmd, cfg)

	if cfg.DataDir == "" {
		return errors.New("--data-dir is required (or set DOCQA_DATA_DIR)")
	}
	if cfg.LLMURL == "" {
		return errors.New("--llm-url is required (or set DOCQA_LLM_URL)")
	}

	store, err := memory.NewStore(chatSnapshotDir)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer store.Close()

	pipeline, _, err := buildPipeline(cfg, store, true)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := pipeline.Ingest(ctx, cfg.DataDir, false)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", cfg.DataDir, err)
	}
	printIngestReport(cmd, report)

	return chatLoop(ctx, cmd, pipeline, cfg.TopK)
}

// applyChatFlags overlays explicitly set flags onto the loaded config.
func applyChatFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("data-dir") || cfg.DataDir == "" {
		if chatDataDir != "" {
			cfg.DataDir = chatDataDir
		}
	}
	if cmd.Flags().Changed("llm-url") || cfg.LLMURL == "" {
		if chatLLMURL != "" {
			cfg.LLMURL = chatLLMURL
		}
	}
	if cmd.Flags().Changed("chunk-size") {
		cfg.ChunkSize = chatChunkSize
	}
	if cmd.Flags().Changed("chunk-overlap") {
		cfg.ChunkOverlap = chatChunkOverlap
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = chatTopK
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = chatConcurrency
	}
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Indexed %d documents into %d chunks.\n", report.DocumentsLoaded, report.ChunksCreated)
	for _, skipped := range report.Skipped {
		cmd.Printf("Skipped %s: %s\n", skipped.Path, skipped.Reason)
	}
}

// chatLoop reads questions from stdin until "exit" or EOF.
func chatLoop(ctx context.Context, cmd *cobra.Command, pipeline driving.Pipeline, topK int) error {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	cmd.Println("Ask a question about your documents. Type 'exit' to quit.")
	cmd.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(cmd.OutOrStdout(), boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "exit") {
			break
		}
		if input == "" {
			continue
		}

		result, err := pipeline.Answer(ctx, input, topK)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", boldCyan("Answer:"), result.Answer)
		if len(result.Sources) > 0 {
			cmd.Printf("Sources: %s\n", strings.Join(result.Sources, ", "))
		}
		cmd.Println()
	}
	return scanner.Err()
}
