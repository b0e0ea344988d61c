// Package pdf decodes PDF corpus files using pdfcpu.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Decoder implements the interface.
var _ driven.Decoder = (*Decoder)(nil)

// Decoder handles .pdf files.
type Decoder struct {
	conf *model.Configuration
}

// New creates a new PDF decoder.
func New() *Decoder {
	conf := model.NewDefaultConfiguration()
	// Tolerate mildly out-of-spec files; strict validation rejects a
	// surprising share of real-world PDFs.
	conf.ValidationMode = model.ValidationRelaxed
	return &Decoder{conf: conf}
}

// Format returns the document format this decoder produces.
func (d *Decoder) Format() domain.Format {
	return domain.FormatPDF
}

// Extensions returns the file extensions this decoder handles.
func (d *Decoder) Extensions() []string {
	return []string{".pdf"}
}

// Decode extracts page content into a scratch directory and
// concatenates it in page order. pdfcpu has no direct text-extraction
// API, so content streams are extracted per page and read back.
func (d *Decoder) Decode(_ context.Context, path string) (*domain.RawDocument, error) {
	outDir, err := os.MkdirTemp("", "docqa-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, nil, d.conf); err != nil {
		return nil, fmt.Errorf("%w: extracting content of %s: %v", domain.ErrInvalidInput, path, err)
	}

	text, err := collectPages(outDir)
	if err != nil {
		return nil, fmt.Errorf("reading extracted pages of %s: %w", path, err)
	}

	return &domain.RawDocument{
		Text:   text,
		Source: path,
		Format: domain.FormatPDF,
	}, nil
}

// collectPages reads the per-page files pdfcpu wrote and joins them in
// page-number order.
func collectPages(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	pages := make(map[int]string, len(entries))
	numbers := make([]int, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		num, ok := pageNumber(entry.Name())
		if !ok {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return "", err
		}
		pages[num] = string(content)
		numbers = append(numbers, num)
	}
	sort.Ints(numbers)

	var sb strings.Builder
	for i, num := range numbers {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSpace(pages[num]))
	}
	return sb.String(), nil
}

// pageNumber parses a page ordinal out of pdfcpu's output file names
// ("page_3.txt" or "Content_page_3.txt" depending on version).
func pageNumber(name string) (int, bool) {
	var num int
	if _, err := fmt.Sscanf(name, "page_%d", &num); err == nil {
		return num, true
	}
	if _, err := fmt.Sscanf(name, "Content_page_%d", &num); err == nil {
		return num, true
	}
	return 0, false
}
