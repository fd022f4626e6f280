package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gita/internal/adapter/monitor"
	"gita/internal/adapter/retriever"
	"gita/internal/domain"
	"gita/internal/port"
	"gita/internal/usage"
)

// RetrieveUseCase selects the verses that answer a question for one
// session and derives the session's next UsageState.
type RetrieveUseCase struct {
	normalizer port.Normalizer
	ranker     *retriever.Ranker
	selector   port.DiversitySelector
	tracker    *usage.Tracker
	verses     port.VerseIndex
	observer   port.Observer
	logger     *slog.Logger
	byID       map[domain.VerseID]int
}

// RetrieveOption configures a RetrieveUseCase.
type RetrieveOption func(*RetrieveUseCase)

func WithRetrieveLogger(l *slog.Logger) RetrieveOption {
	return func(u *RetrieveUseCase) { u.logger = l }
}

func WithObserver(o port.Observer) RetrieveOption {
	return func(u *RetrieveUseCase) { u.observer = o }
}

// NewRetrieveUseCase creates a new retrieve use case over a prepared corpus.
func NewRetrieveUseCase(
	normalizer port.Normalizer,
	ranker *retriever.Ranker,
	selector port.DiversitySelector,
	tracker *usage.Tracker,
	verses port.VerseIndex,
	opts ...RetrieveOption,
) *RetrieveUseCase {
	u := &RetrieveUseCase{
		normalizer: normalizer,
		ranker:     ranker,
		selector:   selector,
		tracker:    tracker,
		verses:     verses,
		observer:   monitor.Nop(),
		logger:     slog.Default().With("component", "retrieve"),
		byID:       make(map[domain.VerseID]int, verses.Len()),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.observer = monitor.Safe(u.observer)

	for i := range verses.Len() {
		u.byID[verses.Verse(i).ID()] = i
	}
	return u
}

// FindRelevantVerses returns up to topN verses for question, ranked against
// state, along with the state that records this selection. A question with
// no usable words yields an empty selection and the state unchanged. Any
// internal failure is reported to the observer and also yields an empty
// selection with the state unchanged.
func (u *RetrieveUseCase) FindRelevantVerses(ctx context.Context, question string, topN int, state domain.UsageState) (sel domain.Selection, next domain.UsageState) {
	start := time.Now()
	sel = domain.Selection{Question: question}
	next = state

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("retrieval panicked: %v", r)
			u.logger.Error("retrieval failed", "err", err)
			u.observer.Error(sessionFrom(ctx), err, map[string]any{"question": question})
			sel = domain.Selection{Question: question}
			next = state
		}
	}()

	if err := ctx.Err(); err != nil {
		u.observer.Error(sessionFrom(ctx), err, map[string]any{"question": question})
		return sel, next
	}
	if topN <= 0 {
		return sel, next
	}

	sel.Normalized = u.normalizer.Normalize(question)
	if strings.TrimSpace(sel.Normalized) == "" {
		u.logger.Debug("question has no matchable words", "question", question)
		return sel, next
	}

	ranked := u.ranker.Rank(sel.Normalized, u.verses, state)
	picked := u.selector.Select(ranked, topN)

	sel.Verses = make([]domain.SelectedVerse, len(picked))
	served := make([]domain.Verse, len(picked))
	seenChapters := make(map[int]struct{}, len(picked))
	for i, c := range picked {
		v := u.verses.Verse(c.Index)
		_, seen := seenChapters[c.Chapter]
		seenChapters[c.Chapter] = struct{}{}
		sel.Verses[i] = domain.SelectedVerse{
			Verse:         v,
			VerseID:       c.VerseID,
			RawSimilarity: c.RawSimilarity,
			FinalScore:    c.FinalScore,
			Rank:          i + 1,
			DiversityPick: !seen,
		}
		served[i] = v
	}

	next = u.tracker.RecordSelection(state, served)

	u.observer.Metric("retrieval", float64(time.Since(start).Milliseconds()), map[string]any{
		"candidates": len(ranked),
		"selected":   len(sel.Verses),
		"session_id": sessionFrom(ctx),
	})
	return sel, next
}

// Lookup returns the verse with the given ID.
func (u *RetrieveUseCase) Lookup(id domain.VerseID) (domain.Verse, bool) {
	i, ok := u.byID[id]
	if !ok {
		return domain.Verse{}, false
	}
	return u.verses.Verse(i), true
}

type sessionKey struct{}

// ContextWithSession tags ctx with the session ID reported in events.
func ContextWithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
