// Package loader walks a directory tree and turns its files into raw
// documents. Each file is dispatched to the decoder registered for its
// extension on a bounded worker pool; a decoder failure is recorded as
// a skipped file and never aborts the batch or cancels sibling workers.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultConcurrency is the default number of decode workers.
const DefaultConcurrency = 4

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader dispatches files to format decoders by extension.
type Loader struct {
	decoders    map[string]driven.Decoder
	concurrency int
}

// Option configures the loader.
type Option func(*Loader)

// WithConcurrency bounds the number of parallel decode workers.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// New creates a loader over the given decoders. Registering two
// decoders for the same extension is a programming error.
func New(decoders []driven.Decoder, opts ...Option) (*Loader, error) {
	l := &Loader{
		decoders:    make(map[string]driven.Decoder),
		concurrency: DefaultConcurrency,
	}
	for _, d := range decoders {
		for _, ext := range d.Extensions() {
			ext = strings.ToLower(ext)
			if _, dup := l.decoders[ext]; dup {
				return nil, fmt.Errorf("%w: duplicate decoder for %s", domain.ErrConfig, ext)
			}
			l.decoders[ext] = d
		}
	}

	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load recursively enumerates files under root and decodes every file
// with a registered extension. The returned documents are sorted by
// source path so reports are stable run to run; finding nothing is an
// empty result, not an error.
func (l *Loader) Load(ctx context.Context, root string) (*driven.LoadResult, error) {
	paths, err := l.enumerate(root)
	if err != nil {
		return nil, err
	}

	logger.Debug("loader: %d candidate files under %s", len(paths), root)

	type outcome struct {
		doc     *domain.RawDocument
		skipped *domain.SkippedFile
	}

	outcomes := make([]outcome, len(paths))
	sem := make(chan struct{}, l.concurrency)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			decoder := l.decoders[strings.ToLower(filepath.Ext(path))]
			doc, err := decoder.Decode(ctx, path)
			if err != nil {
				// Swallowed by design: one malformed document must
				// not block ingestion of the rest of the corpus.
				logger.Warn("loader: skipping %s: %v", path, err)
				outcomes[i] = outcome{skipped: &domain.SkippedFile{Path: path, Reason: err.Error()}}
				return
			}
			outcomes[i] = outcome{doc: doc}
		}(i, path)
	}
	wg.Wait()

	result := &driven.LoadResult{}
	for _, o := range outcomes {
		switch {
		case o.doc != nil:
			result.Documents = append(result.Documents, *o.doc)
		case o.skipped != nil:
			result.Skipped = append(result.Skipped, *o.skipped)
		}
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].Source < result.Documents[j].Source
	})
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].Path < result.Skipped[j].Path
	})

	logger.Info("loader: decoded %d documents, skipped %d files", len(result.Documents), len(result.Skipped))
	return result, nil
}

// enumerate collects every file under root whose extension has a
// registered decoder.
func (l *Loader) enumerate(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := l.decoders[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}
