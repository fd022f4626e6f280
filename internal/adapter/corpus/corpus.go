package corpus

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"gita/internal/domain"
	"gita/internal/port"
)

// Fields that can be matched against a question.
const (
	FieldVerseText = "verse_text"
	FieldMeaning   = "meaning"
	FieldBoth      = "both"
)

// MatchText returns the text of v that is normalized for matching.
func MatchText(v domain.Verse, field string) string {
	switch field {
	case FieldMeaning:
		return v.Meaning
	case FieldBoth:
		return v.VerseText + " " + v.Meaning
	default:
		return v.VerseText
	}
}

// Corpus is the ordered verse table with the normalized text of each verse
// computed once at build time. It is read-only after Build and safe for
// concurrent readers.
type Corpus struct {
	verses     []domain.Verse
	normalized []string
	field      string
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	workers  int
	progress func(done, total int)
	logger   *slog.Logger
}

// WithWorkers sets the normalization pool size. 0 means NumCPU.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) { o.workers = n }
}

// WithProgress registers a callback invoked after each verse is normalized.
// It is called from pool workers and must be safe for concurrent use.
func WithProgress(fn func(done, total int)) BuildOption {
	return func(o *buildOptions) { o.progress = fn }
}

func WithBuildLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = l }
}

// Build normalizes every verse exactly once on a worker pool.
func Build(verses []domain.Verse, normalizer port.Normalizer, field string, opts ...BuildOption) (*Corpus, error) {
	if len(verses) == 0 {
		return nil, ErrNoVerses
	}
	o := buildOptions{logger: slog.Default().With("component", "corpus")}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}

	pool, err := ants.NewPool(o.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	start := time.Now()
	normalized := make([]string, len(verses))
	var (
		wg   sync.WaitGroup
		done atomic.Int64
	)
	for i := range verses {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			normalized[i] = normalizer.Normalize(MatchText(verses[i], field))
			n := done.Add(1)
			if o.progress != nil {
				o.progress(int(n), len(verses))
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("failed to submit verse %s: %w", verses[i].ID(), err)
		}
	}
	wg.Wait()

	o.logger.Info("corpus normalized",
		"verses", len(verses),
		"field", field,
		"workers", o.workers,
		"elapsed", time.Since(start))

	return &Corpus{verses: verses, normalized: normalized, field: field}, nil
}

func (c *Corpus) Len() int {
	return len(c.verses)
}

func (c *Corpus) Verse(i int) domain.Verse {
	return c.verses[i]
}

func (c *Corpus) Normalized(i int) string {
	return c.normalized[i]
}

// Field returns the verse field the corpus was normalized from.
func (c *Corpus) Field() string {
	return c.field
}

// Verses returns a copy of the verse table.
func (c *Corpus) Verses() []domain.Verse {
	out := make([]domain.Verse, len(c.verses))
	copy(out, c.verses)
	return out
}

// Chapters returns the number of distinct chapters.
func (c *Corpus) Chapters() int {
	seen := make(map[int]struct{})
	for _, v := range c.verses {
		seen[v.Chapter] = struct{}{}
	}
	return len(seen)
}
