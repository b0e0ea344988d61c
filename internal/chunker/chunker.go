// Package chunker splits documents into overlapping fixed-size chunks.
// Window offsets are byte-based but always land on rune starts, so
// every chunk is valid UTF-8. Splitting is fully deterministic:
// re-chunking identical text with identical parameters yields
// byte-identical chunk boundaries.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive chunks of the same document.
const DefaultChunkOverlap = 200

// boundaries are tried in order when snapping a window end to a
// natural break. Paragraphs beat sentences beat words.
var boundaries = []string{"\n\n", "\n", ". ", " "}

// Splitter slides a window of chunkSize over document text, advancing
// chunkSize-overlap per step.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. overlap must be non-negative and strictly
// smaller than size, otherwise domain.ErrChunkConfig is returned.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrChunkConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrChunkConfig, overlap, size)
	}
	return &Splitter{chunkSize: size, overlap: overlap}, nil
}

// ChunkSize returns the configured window size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split chunks each document independently. Sequence numbers start at
// 0 per source and follow original document order.
func (s *Splitter) Split(docs []domain.RawDocument) []domain.Chunk {
	var chunks []domain.Chunk
	for i := range docs {
		chunks = append(chunks, s.splitOne(&docs[i])...)
	}
	return chunks
}

// splitOne chunks a single document.
func (s *Splitter) splitOne(doc *domain.RawDocument) []domain.Chunk {
	text := doc.Text
	if text == "" {
		return nil
	}

	estimated := (len(text) / (s.chunkSize - s.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	sequence := 0
	start := 0

	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = runeStart(text, s.snapToBoundary(text, start, end))
			if end <= start {
				// Window narrower than one rune; take the whole rune.
				_, width := utf8.DecodeRuneInString(text[start:])
				end = start + width
			}
		}

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			Text:     text[start:end],
			Source:   doc.Source,
			Sequence: sequence,
			Metadata: map[string]any{
				"source": doc.Source,
				"format": string(doc.Format),
			},
		})
		sequence++

		if end == len(text) {
			break
		}
		next := runeStart(text, end-s.overlap)
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// runeStart backs i off to the nearest rune start at or before it, so
// a window edge never splits a multi-byte rune.
func runeStart(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// snapToBoundary moves end back to the nearest natural break within
// the final fifth of the window. The snapped chunk must stay longer
// than the overlap so the next window still makes forward progress.
func (s *Splitter) snapToBoundary(text string, start, end int) int {
	searchFrom := end - s.chunkSize/5
	if floor := start + s.overlap + 1; searchFrom < floor {
		searchFrom = floor
	}
	if searchFrom >= end {
		return end
	}

	window := text[searchFrom:end]
	for _, b := range boundaries {
		if idx := strings.LastIndex(window, b); idx >= 0 {
			snapped := searchFrom + idx + len(b)
			if snapped > start+s.overlap {
				return snapped
			}
		}
	}
	return end
}
