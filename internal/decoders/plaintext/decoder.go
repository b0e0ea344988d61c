// Package plaintext decodes plain text corpus files.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Decoder implements the interface.
var _ driven.Decoder = (*Decoder)(nil)

// Decoder handles .txt files.
type Decoder struct{}

// New creates a new plain text decoder.
func New() *Decoder {
	return &Decoder{}
}

// Format returns the document format this decoder produces.
func (d *Decoder) Format() domain.Format {
	return domain.FormatText
}

// Extensions returns the file extensions this decoder handles.
func (d *Decoder) Extensions() []string {
	return []string{".txt"}
}

// Decode reads the file as UTF-8 text. Files that are not valid UTF-8
// are rejected so binary noise never reaches the embedding model.
func (d *Decoder) Decode(_ context.Context, path string) (*domain.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, path)
	}

	return &domain.RawDocument{
		Text:   string(data),
		Source: path,
		Format: domain.FormatText,
	}, nil
}
