package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func chunk(text, source string, seq int, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        "c-" + text,
		Text:      text,
		Source:    source,
		Sequence:  seq,
		Embedding: embedding,
	}
}

func TestInsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore("")
	require.NoError(t, err)

	n, err := s.Insert(ctx, []domain.Chunk{
		chunk("near", "a.txt", 0, []float32{1, 0, 0}),
		chunk("far", "b.txt", 0, []float32{0, 1, 0}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Text)
	assert.Equal(t, "a.txt", results[0].Metadata["source"])
	assert.Equal(t, "far", results[1].Text)
}

func TestSearch_KGreaterThanCount(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore("")
	require.NoError(t, err)

	_, err = s.Insert(ctx, []domain.Chunk{chunk("only", "a.txt", 0, []float32{1, 1})})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_TiesBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore("")
	require.NoError(t, err)

	// Parallel vectors are equidistant from the query.
	_, err = s.Insert(ctx, []domain.Chunk{
		chunk("first", "a.txt", 0, []float32{2, 0}),
		chunk("second", "a.txt", 1, []float32{4, 0}),
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Text)
	assert.Equal(t, "second", results[1].Text)
}

func TestSearch_ResultVectorIsACopy(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore("")
	require.NoError(t, err)

	_, err = s.Insert(ctx, []domain.Chunk{
		chunk("near", "a.txt", 0, []float32{1, 0, 0}),
		chunk("far", "b.txt", 0, []float32{0, 1, 0}),
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Clobber the returned vector; the index must not notice.
	for i := range results[0].Vector {
		results[0].Vector[i] = -99
	}

	again, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, "near", again[0].Text)
	assert.Equal(t, []float32{1, 0, 0}, again[0].Vector)
}

func TestSearch_InvalidK(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)
	_, err = s.Search(context.Background(), []float32{1}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDuplicateInsertAccumulates(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore("")
	require.NoError(t, err)

	c := chunk("dup", "a.txt", 0, []float32{1, 2})
	_, err = s.Insert(ctx, []domain.Chunk{c})
	require.NoError(t, err)
	_, err = s.Insert(ctx, []domain.Chunk{c})
	require.NoError(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPersistAndReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)
	_, err = s.Insert(ctx, []domain.Chunk{chunk("kept", "a.txt", 0, []float32{1, 0})})
	require.NoError(t, err)
	require.NoError(t, s.Persist(ctx))

	reloaded, err := NewStore(dir)
	require.NoError(t, err)
	count, err := reloaded.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := reloaded.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kept", results[0].Text)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)
	_, err = s.Insert(ctx, []domain.Chunk{chunk("gone", "a.txt", 0, []float32{1})})
	require.NoError(t, err)
	require.NoError(t, s.Persist(ctx))

	require.NoError(t, s.Reset(ctx))
	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Snapshot is gone too: a fresh load sees an empty store.
	reloaded, err := NewStore(dir)
	require.NoError(t, err)
	count, err = reloaded.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
