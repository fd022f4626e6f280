package retriever

import (
	"math/rand/v2"
	"sort"

	"gita/config"
	"gita/internal/domain"
	"gita/internal/port"
)

// Ranker scores every verse against a question and re-weights the raw
// similarity by what the session has already been shown:
//
//	penalty = 1 / (1 + usagePenalty*usage_n), halved again if last served
//	boost   = 1 / (1 + chapterBoost*chapter_n)
//	final   = base * penalty * boost * jitter
type Ranker struct {
	scorer           port.Scorer
	usagePenalty     float64
	lastServedFactor float64
	chapterBoost     float64
	jitter           func() float64
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithJitter replaces the random jitter source. Tests pin it to 1.
func WithJitter(f func() float64) RankerOption {
	return func(r *Ranker) { r.jitter = f }
}

// UniformJitter returns a jitter source drawing from [1-spread, 1+spread).
func UniformJitter(spread float64) func() float64 {
	if spread <= 0 {
		return func() float64 { return 1 }
	}
	return func() float64 {
		return 1 - spread + rand.Float64()*2*spread
	}
}

// NewRanker creates a ranker with the factors from cfg.
func NewRanker(scorer port.Scorer, cfg config.RankConfig, opts ...RankerOption) *Ranker {
	r := &Ranker{
		scorer:           scorer,
		usagePenalty:     cfg.UsagePenalty,
		lastServedFactor: cfg.LastServedFactor,
		chapterBoost:     cfg.ChapterBoost,
		jitter:           UniformJitter(cfg.JitterSpread),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scans the whole corpus and returns one candidate per verse, sorted
// by descending final score. Equal scores keep corpus order.
func (r *Ranker) Rank(question string, verses port.VerseIndex, state domain.UsageState) []domain.ScoredCandidate {
	n := verses.Len()
	out := make([]domain.ScoredCandidate, n)
	for i := range n {
		v := verses.Verse(i)
		id := v.ID()
		base := r.scorer.Score(question, verses.Normalized(i))
		out[i] = domain.ScoredCandidate{
			Index:         i,
			RawSimilarity: base,
			FinalScore:    base * r.Penalty(id, state) * r.Boost(v.Chapter, state) * r.jitter(),
			Chapter:       v.Chapter,
			VerseID:       id,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	return out
}

// Penalty returns the usage multiplier for a verse.
func (r *Ranker) Penalty(id domain.VerseID, state domain.UsageState) float64 {
	p := 1 / (1 + r.usagePenalty*float64(state.UsageCount(id)))
	if state.WasLastServed(id) {
		p *= r.lastServedFactor
	}
	return p
}

// Boost returns the chapter multiplier; fresh chapters get 1.
func (r *Ranker) Boost(chapter int, state domain.UsageState) float64 {
	return 1 / (1 + r.chapterBoost*float64(state.ChapterCount(chapter)))
}
