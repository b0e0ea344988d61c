// Package docx decodes Word documents. DOCX is a ZIP container whose
// body text lives in word/document.xml; the decoder walks that XML and
// collects text runs, inserting paragraph breaks between <w:p> blocks.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Decoder implements the interface.
var _ driven.Decoder = (*Decoder)(nil)

// Decoder handles .docx files, plus .doc files that turn out to be
// ZIP containers (mislabelled docx). True legacy binary .doc is
// rejected and ends up in the skipped-file report.
type Decoder struct{}

// New creates a new Word decoder.
func New() *Decoder {
	return &Decoder{}
}

// Format returns the document format this decoder produces.
func (d *Decoder) Format() domain.Format {
	return domain.FormatWord
}

// Extensions returns the file extensions this decoder handles.
func (d *Decoder) Extensions() []string {
	return []string{".docx", ".doc"}
}

// Decode extracts the body text of a Word document.
func (d *Decoder) Decode(_ context.Context, path string) (*domain.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a DOCX container", domain.ErrInvalidInput, path)
	}

	text, err := extractDocumentText(reader)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}

	return &domain.RawDocument{
		Text:   text,
		Source: path,
		Format: domain.FormatWord,
	}, nil
}

// extractDocumentText reads word/document.xml and concatenates all
// text runs, one line per paragraph.
func extractDocumentText(reader *zip.Reader) (string, error) {
	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: missing word/document.xml", domain.ErrInvalidInput)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("opening document.xml: %w", err)
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing document.xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
