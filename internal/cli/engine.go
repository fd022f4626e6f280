package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"gita/config"
	"gita/internal/adapter/analyzer"
	"gita/internal/adapter/corpus"
	"gita/internal/adapter/fs"
	"gita/internal/adapter/llm"
	"gita/internal/adapter/memstore"
	"gita/internal/adapter/monitor"
	"gita/internal/adapter/retriever"
	"gita/internal/adapter/session"
	"gita/internal/adapter/store"
	"gita/internal/port"
	"gita/internal/usage"
	"gita/internal/usecase"
)

// engine holds everything a command needs, wired from config.
type engine struct {
	cfg        *config.Config
	normalizer *analyzer.Normalizer
	index      *usecase.IndexResult
	monitor    *monitor.Monitor
	retrieve   *usecase.RetrieveUseCase
	sessions   *session.Manager
}

type engineOptions struct {
	progress bool
	audit    bool
}

// newEngine loads the corpus and wires retrieval and sessions.
func newEngine(ctx context.Context, opts engineOptions) (*engine, error) {
	c := GetConfig()
	e := &engine{
		cfg:        c,
		normalizer: analyzer.NewNormalizer(c.Normalize),
		monitor:    monitor.New(),
	}

	loader := corpus.NewLoader(fs.NewWalker(c.Corpus.Exclude))
	indexUC := usecase.NewIndexUseCase(loader, e.normalizer, c.Corpus.MatchField, c.Corpus.Workers)

	indexOpts := usecase.IndexOptions{Audit: opts.audit}
	var bar *progressbar.ProgressBar
	if opts.progress {
		var barMu sync.Mutex
		indexOpts.Progress = func(done, total int) {
			barMu.Lock()
			defer barMu.Unlock()
			if bar == nil {
				bar = newProgressBar(total, "Normalizing")
			}
			bar.Set(done)
		}
	}

	path := config.ResolvePath(GetRootDir(), c.Corpus.Path)
	result, err := indexUC.Index(ctx, path, indexOpts)
	if err != nil {
		return nil, err
	}
	if bar != nil {
		bar.Finish()
	}
	e.index = result

	scorerOpts := []retriever.ScorerOption{
		retriever.WithWeights(c.Similarity.JaccardWeight, c.Similarity.SemanticWeight),
	}
	if c.Similarity.Semantic {
		senses, err := analyzer.NewSenseNetwork(
			analyzer.WithThreshold(c.Similarity.RelatedThreshold),
			analyzer.WithStemRelations(c.Similarity.StemsAreRelated),
		)
		if err != nil {
			slog.Warn("sense network unavailable, using token overlap only", "err", err)
		} else {
			scorerOpts = append(scorerOpts, retriever.WithRelatedness(senses))
		}
	}
	scorer := retriever.NewSimilarityScorer(scorerOpts...)
	ranker := retriever.NewRanker(scorer, c.Rank)

	e.retrieve = usecase.NewRetrieveUseCase(
		e.normalizer,
		ranker,
		retriever.NewDiversitySelector(),
		usage.NewTracker(e.monitor),
		result.Corpus,
		usecase.WithObserver(e.monitor),
	)

	st, err := openSessionStore(c)
	if err != nil {
		return nil, err
	}
	e.sessions = session.NewManager(st, c.Session, session.WithObserver(e.monitor))

	return e, nil
}

// newAsk wires the answer flow on top of the engine.
func (e *engine) newAsk() (*usecase.AskUseCase, error) {
	synth, err := llm.FromConfig(e.cfg.Answer)
	if err != nil {
		return nil, err
	}
	return usecase.NewAskUseCase(e.retrieve, e.sessions, synth, e.monitor, e.cfg)
}

func (e *engine) Close() error {
	if e.sessions == nil {
		return nil
	}
	return e.sessions.Close()
}

// openSessionStore returns the configured session store. The bolt store
// is migrated first, which drops sessions recorded against a different
// corpus.
func openSessionStore(c *config.Config) (port.SessionStore, error) {
	if c.Session.Store != "bolt" {
		return memstore.NewMemoryStore(), nil
	}

	if err := config.EnsureStateDir(GetRootDir()); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	st, err := store.NewBoltStore(config.SessionDBPath(GetRootDir()))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	res, err := st.Migrate(c)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to migrate session store: %w", err)
	}
	if res.NeedsReset {
		slog.Info("session store reset", "reason", res.Reason)
	}
	return st, nil
}

func newProgressBar(total int, label string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", label)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
