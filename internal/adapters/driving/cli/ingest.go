package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/docqa/internal/config"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var (
	ingestDataDir     string
	ingestDBPath      string
	ingestSnapshotDir string
	ingestReplace     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index a directory of documents into a vector store",
	Long: `Loads, chunks and embeds every supported document under --data-dir.

With --db the chunks go into a SQLite database that "docqa serve" can
answer from later. With --snapshot-dir they go into an in-memory store
persisted as a JSON snapshot. Re-running ingest appends; pass --replace
to rebuild the collection from scratch.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDataDir, "data-dir", "", "directory of documents to index")
	ingestCmd.Flags().StringVar(&ingestDBPath, "db", "", "SQLite database path")
	ingestCmd.Flags().StringVar(&ingestSnapshotDir, "snapshot-dir", "", "snapshot directory for the in-memory store")
	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "drop existing records before indexing")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") || cfg.DataDir == "" {
		if ingestDataDir != "" {
			cfg.DataDir = ingestDataDir
		}
	}
	if cmd.Flags().Changed("db") || cfg.DBPath == "" {
		if ingestDBPath != "" {
			cfg.DBPath = ingestDBPath
		}
	}

	if cfg.DataDir == "" {
		return errors.New("--data-dir is required (or set DOCQA_DATA_DIR)")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Ingest never calls the generative backend.
	pipeline, _, err := buildPipeline(cfg, store, false)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := pipeline.Ingest(ctx, cfg.DataDir, ingestReplace)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", cfg.DataDir, err)
	}
	printIngestReport(cmd, report)
	return nil
}

// openStore picks the backend: SQLite when a database path is
// configured, the snapshot-backed memory store otherwise.
func openStore(cfg *config.Config) (driven.VectorStore, error) {
	if cfg.DBPath != "" {
		store, err := sqlite.NewStore(cfg.DBPath, sqlite.DefaultCollection)
		if err != nil {
			return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
		}
		return store, nil
	}
	store, err := memory.NewStore(ingestSnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}
	return store, nil
}
