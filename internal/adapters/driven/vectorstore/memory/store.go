// Package memory provides the ephemeral vector store backend: an
// in-process index with an optional on-disk snapshot directory.
// Suitable for single-process command-line use; rebuilding a
// collection means reloading its snapshot directory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/vectorops"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// snapshotFile is the snapshot name inside the snapshot directory.
const snapshotFile = "records.json"

// record is one stored vector plus its insertion ordinal.
type record struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"vector"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Store is the in-memory vector store.
type Store struct {
	mu      sync.RWMutex
	records []record
	dir     string
}

// NewStore creates a memory store. When dir is non-empty an existing
// snapshot in it is loaded and Persist writes back to it; when empty
// the store is purely in-process and Persist is a no-op.
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, snapshotFile))
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return s, nil
}

// Insert appends records for the given chunks. Existing records are
// never touched; duplicates accumulate.
func (s *Store) Insert(_ context.Context, chunks []domain.Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range chunks {
		c := &chunks[i]
		vector := make([]float32, len(c.Embedding))
		copy(vector, c.Embedding)

		s.records = append(s.records, record{
			ID:       uuid.New().String(),
			Vector:   vector,
			Text:     c.Text,
			Metadata: recordMetadata(c),
		})
	}
	return len(chunks), nil
}

// Search scans every record, scoring by cosine distance. The sort is
// stable over insertion order, so equal distances rank earlier-inserted
// records first.
func (s *Store) Search(_ context.Context, vector []float32, k int) ([]domain.VectorRecord, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec      *record
		distance float64
	}

	candidates := make([]scored, len(s.records))
	for i := range s.records {
		candidates[i] = scored{
			rec:      &s.records[i],
			distance: vectorops.CosineDistance(vector, s.records[i].Vector),
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	results := make([]domain.VectorRecord, 0, k)
	for _, c := range candidates[:k] {
		// Copy out so a caller mutating the result cannot corrupt the
		// index, mirroring the copy-in on Insert.
		vec := make([]float32, len(c.rec.Vector))
		copy(vec, c.rec.Vector)
		results = append(results, domain.VectorRecord{
			ID:       c.rec.ID,
			Vector:   vec,
			Text:     c.rec.Text,
			Metadata: c.rec.Metadata,
		})
	}
	return results, nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Persist writes the snapshot to the snapshot directory, atomically
// via a rename. No-op without a snapshot directory.
func (s *Store) Persist(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dir == "" {
		return nil
	}

	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := filepath.Join(s.dir, snapshotFile+".tmp")
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, snapshotFile)); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Reset removes every record from the collection and its snapshot.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	if s.dir == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, snapshotFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// recordMetadata merges the chunk metadata with the keys a record must
// always carry.
func recordMetadata(c *domain.Chunk) map[string]any {
	md := make(map[string]any, len(c.Metadata)+2)
	for k, v := range c.Metadata {
		md[k] = v
	}
	md["source"] = c.Source
	md["sequence"] = c.Sequence
	return md
}
