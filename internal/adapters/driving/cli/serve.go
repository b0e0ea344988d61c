package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docqa/internal/config"
	"github.com/custodia-labs/docqa/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question answering pipeline over HTTP",
	Long: `Starts an HTTP server with POST /ingest, POST /chat and GET /healthz.

Configuration comes from ~/.docqa/config.toml and DOCQA_* environment
variables (a .env file in the working directory is loaded first). The
database path and generative backend URL must be configured; the server
refuses to start without them.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	if cfg.DBPath == "" {
		return fmt.Errorf("database path not configured: set db_path in config.toml or DOCQA_DB_PATH")
	}
	if cfg.LLMURL == "" {
		return fmt.Errorf("generative backend not configured: set llm_url in config.toml or DOCQA_LLM_URL")
	}

	store, err := sqlite.NewStore(cfg.DBPath, sqlite.DefaultCollection)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}
	defer store.Close()

	pipeline, embedder, err := buildPipeline(cfg, store, true)
	if err != nil {
		return err
	}

	// Warn-only: the embedding service may come up after we do.
	if err := embedder.Ping(cmd.Context()); err != nil {
		logger.Warn("embedding service unreachable: %v", err)
	}

	server := httpapi.NewServer(cfg.Addr, pipeline, cfg.DataDir, cfg.TopK)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}
