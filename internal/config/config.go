package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Defaults applied before the config file and environment are consulted.
const (
	DefaultAddr         = ":8000"
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultTopK         = 4
	DefaultConcurrency  = 4
)

// Config holds the runtime settings for the service and CLI.
// Values are resolved in order: defaults, then ~/.docqa/config.toml,
// then DOCQA_* environment variables. Later sources win.
type Config struct {
	// DBPath is the SQLite database file used by the durable store.
	DBPath string `toml:"db_path"`
	// LLMURL is the generative backend endpoint, including the ?key= query.
	LLMURL string `toml:"llm_url"`
	// DataDir is the directory scanned for documents on ingest.
	DataDir string `toml:"data_dir"`
	// Addr is the HTTP listen address for serve mode.
	Addr string `toml:"addr"`
	// EmbeddingURL is the embedding service base URL.
	EmbeddingURL string `toml:"embedding_url"`
	// EmbeddingModel is the model name requested from the embedding service.
	EmbeddingModel string `toml:"embedding_model"`

	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	TopK         int `toml:"top_k"`
	Concurrency  int `toml:"concurrency"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Addr:         DefaultAddr,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		TopK:         DefaultTopK,
		Concurrency:  DefaultConcurrency,
	}
}

// Load resolves the configuration from all sources. If configDir is
// empty it defaults to ~/.docqa. A missing config file is not an error.
func Load(configDir string) (*Config, error) {
	cfg := Default()

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docqa")
	}

	path := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfig, path, err)
		}
	case os.IsNotExist(err):
		// No config file yet - that's fine, defaults plus env apply
	default:
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays DOCQA_* environment variables onto the config.
func (c *Config) applyEnv() {
	setString(&c.DBPath, "DOCQA_DB_PATH")
	setString(&c.LLMURL, "DOCQA_LLM_URL")
	setString(&c.DataDir, "DOCQA_DATA_DIR")
	setString(&c.Addr, "DOCQA_ADDR")
	setString(&c.EmbeddingURL, "DOCQA_EMBEDDING_URL")
	setString(&c.EmbeddingModel, "DOCQA_EMBEDDING_MODEL")
	setInt(&c.ChunkSize, "DOCQA_CHUNK_SIZE")
	setInt(&c.ChunkOverlap, "DOCQA_CHUNK_OVERLAP")
	setInt(&c.TopK, "DOCQA_TOP_K")
	setInt(&c.Concurrency, "DOCQA_CONCURRENCY")
}

// Validate checks settings that would otherwise fail deep inside a
// component at an awkward time.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrChunkConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be in [0, %d)", domain.ErrChunkConfig, c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrConfig, c.TopK)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", domain.ErrConfig, c.Concurrency)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
