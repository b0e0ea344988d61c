package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestMetadata(t *testing.T) {
	d := New()
	assert.Equal(t, domain.FormatPDF, d.Format())
	assert.Equal(t, []string{".pdf"}, d.Extensions())
}

func TestDecode_RejectsCorruptFile(t *testing.T) {
	d := New()
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0600))

	_, err := d.Decode(context.Background(), path)
	assert.Error(t, err)
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"page_1.txt", 1, true},
		{"page_12.txt", 12, true},
		{"Content_page_3.txt", 3, true},
		{"notes.txt", 0, false},
	}

	for _, tt := range tests {
		got, ok := pageNumber(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if ok {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}
}

func TestCollectPages_OrdersByPageNumber(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_2.txt"), []byte("second"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_1.txt"), []byte("first"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_10.txt"), []byte("tenth"), 0600))

	text, err := collectPages(dir)
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond\n\ntenth", text)
}
