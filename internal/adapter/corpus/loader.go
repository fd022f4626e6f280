package corpus

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
	"golang.org/x/sync/errgroup"

	"gita/internal/domain"
	"gita/internal/port"
)

const (
	colChapter = "chapter"
	colVerse   = "verse_number"
	colText    = "verse_text"
	colMeaning = "meaning"
)

var requiredColumns = []string{colChapter, colVerse, colText, colMeaning}

// Loader reads verse tables from CSV files, plain or xz compressed.
type Loader struct {
	resolver    port.SourceResolver
	concurrency int
	logger      *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

func WithLoaderLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithConcurrency bounds how many files are parsed at once.
func WithConcurrency(n int) LoaderOption {
	return func(ld *Loader) {
		if n > 0 {
			ld.concurrency = n
		}
	}
}

func NewLoader(resolver port.SourceResolver, opts ...LoaderOption) *Loader {
	l := &Loader{
		resolver:    resolver,
		concurrency: 4,
		logger:      slog.Default().With("component", "corpus"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves pattern and parses every matching file. Verses keep file
// order, then row order. Duplicate verse IDs across all files are an error.
func (l *Loader) Load(ctx context.Context, pattern string) ([]domain.Verse, error) {
	files, err := l.resolver.Resolve(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve corpus %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, pattern)
	}

	parts := make([][]domain.Verse, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			verses, err := ReadFile(path)
			if err != nil {
				return err
			}
			parts[i] = verses
			l.logger.Debug("corpus file loaded", "path", path, "verses", len(verses))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Verse
	seen := make(map[domain.VerseID]string)
	for i, verses := range parts {
		for _, v := range verses {
			id := v.ID()
			if prev, dup := seen[id]; dup {
				return nil, fmt.Errorf("%w: %s in %s (first seen in %s)", ErrDuplicateVerse, id, files[i], prev)
			}
			seen[id] = files[i]
			all = append(all, v)
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVerses, pattern)
	}

	l.logger.Info("corpus loaded", "files", len(files), "verses", len(all))
	return all, nil
}

// ReadFile parses one verse table. Files ending in .xz are decompressed.
func ReadFile(path string) ([]domain.Verse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open xz stream %s: %w", path, err)
		}
		r = xr
	}

	verses, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return verses, nil
}

// Parse reads a CSV verse table with a header row. Columns may appear in
// any order; unknown columns are ignored.
func Parse(r io.Reader) ([]domain.Verse, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		i, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		idx[name] = i
	}

	var verses []domain.Verse
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)

		field := func(name string) (string, error) {
			i := idx[name]
			if i >= len(rec) {
				return "", fmt.Errorf("%w: line %d: no %s field", ErrMalformedRow, line, name)
			}
			return rec[i], nil
		}
		number := func(name string) (int, error) {
			s, err := field(name)
			if err != nil {
				return 0, err
			}
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return 0, fmt.Errorf("%w: line %d: %s %q is not an integer", ErrMalformedRow, line, name, s)
			}
			return n, nil
		}

		var v domain.Verse
		if v.Chapter, err = number(colChapter); err != nil {
			return nil, err
		}
		if v.VerseNumber, err = number(colVerse); err != nil {
			return nil, err
		}
		if v.VerseText, err = field(colText); err != nil {
			return nil, err
		}
		if v.Meaning, err = field(colMeaning); err != nil {
			return nil, err
		}
		verses = append(verses, v)
	}
	return verses, nil
}
