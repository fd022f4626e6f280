package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gita/internal/adapter/corpus"
	"gita/internal/port"
)

// IndexUseCase loads the verse table and precomputes the normalized text
// every retrieval matches against.
type IndexUseCase struct {
	loader     *corpus.Loader
	normalizer port.Normalizer
	field      string
	workers    int
	logger     *slog.Logger
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(
	loader *corpus.Loader,
	normalizer port.Normalizer,
	field string,
	workers int,
) *IndexUseCase {
	return &IndexUseCase{
		loader:     loader,
		normalizer: normalizer,
		field:      field,
		workers:    workers,
		logger:     slog.Default().With("component", "index"),
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	Corpus   *corpus.Corpus
	Verses   int
	Chapters int
	Elapsed  time.Duration
	Reports  []corpus.FieldReport
}

// IndexOptions tune a single Index call.
type IndexOptions struct {
	Progress func(done, total int)
	Audit    bool
}

// Index loads every file matched by pattern and normalizes each verse
// once. With opts.Audit set it also reports how each field normalizes.
// Any load error is fatal.
func (u *IndexUseCase) Index(ctx context.Context, pattern string, opts IndexOptions) (*IndexResult, error) {
	start := time.Now()

	verses, err := u.loader.Load(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	buildOpts := []corpus.BuildOption{corpus.WithWorkers(u.workers)}
	if opts.Progress != nil {
		buildOpts = append(buildOpts, corpus.WithProgress(opts.Progress))
	}
	c, err := corpus.Build(verses, u.normalizer, u.field, buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build corpus: %w", err)
	}

	result := &IndexResult{
		Corpus:   c,
		Verses:   c.Len(),
		Chapters: c.Chapters(),
	}
	if opts.Audit {
		result.Reports = corpus.Audit(verses, u.normalizer)
		for _, r := range result.Reports {
			if r.Field == u.field && r.Degenerate() {
				u.logger.Warn("match field normalizes to almost nothing",
					"field", r.Field,
					"empty", r.Empty,
					"sparse", r.Sparse,
					"verses", r.Verses)
			}
		}
	}
	result.Elapsed = time.Since(start)
	return result, nil
}
