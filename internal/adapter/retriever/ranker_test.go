package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gita/config"
	"gita/internal/domain"
)

// stubIndex is a corpus whose normalized text is just a key into stubScorer.
type stubIndex struct {
	verses []domain.Verse
	keys   []string
}

func (s stubIndex) Len() int                 { return len(s.verses) }
func (s stubIndex) Verse(i int) domain.Verse { return s.verses[i] }
func (s stubIndex) Normalized(i int) string  { return s.keys[i] }

type stubScorer map[string]float64

func (s stubScorer) Score(_, b string) float64 { return s[b] }

func pinned() float64 { return 1 }

// threeVerses is the {A, B, C} corpus: A and B in chapter 1, C in chapter 2.
func threeVerses() stubIndex {
	return stubIndex{
		verses: []domain.Verse{
			{Chapter: 1, VerseNumber: 1, VerseText: "A"},
			{Chapter: 1, VerseNumber: 2, VerseText: "B"},
			{Chapter: 2, VerseNumber: 1, VerseText: "C"},
		},
		keys: []string{"a", "b", "c"},
	}
}

func newTestRanker(scores stubScorer) *Ranker {
	return NewRanker(scores, config.DefaultConfig().Rank, WithJitter(pinned))
}

func ids(cands []domain.ScoredCandidate) []domain.VerseID {
	out := make([]domain.VerseID, len(cands))
	for i, c := range cands {
		out[i] = c.VerseID
	}
	return out
}

func TestRanker_NoPriorUsage(t *testing.T) {
	r := newTestRanker(stubScorer{"a": 0.9, "b": 0.1, "c": 0.8})

	ranked := r.Rank("q", threeVerses(), domain.NewUsageState())
	require.Len(t, ranked, 3)
	assert.Equal(t, []domain.VerseID{"1.1", "2.1", "1.2"}, ids(ranked))
	assert.InDelta(t, 0.9, ranked[0].FinalScore, 1e-9)
	assert.Equal(t, ranked[0].RawSimilarity, ranked[0].FinalScore)

	selected := NewDiversitySelector().Select(ranked, 2)
	assert.Equal(t, []domain.VerseID{"1.1", "2.1"}, ids(selected))
}

func TestRanker_UsageFlipsOrdering(t *testing.T) {
	r := newTestRanker(stubScorer{"a": 0.9, "b": 0.1, "c": 0.8})

	state := domain.NewUsageState()
	state.VerseUsage["1.1"] = 2

	ranked := r.Rank("q", threeVerses(), state)
	assert.Equal(t, []domain.VerseID{"2.1", "1.1", "1.2"}, ids(ranked))
	assert.InDelta(t, 0.9/1.4, ranked[1].FinalScore, 1e-9)
}

func TestRanker_UsageDoesNotOverrideLargeGap(t *testing.T) {
	// 0.9 / 1.4 is about 0.643, still above 0.6.
	r := newTestRanker(stubScorer{"a": 0.9, "b": 0.1, "c": 0.6})

	state := domain.NewUsageState()
	state.VerseUsage["1.1"] = 2

	ranked := r.Rank("q", threeVerses(), state)
	assert.Equal(t, domain.VerseID("1.1"), ranked[0].VerseID)
}

func TestRanker_PenaltyEffect(t *testing.T) {
	r := newTestRanker(stubScorer{"a": 0.5, "b": 0.5, "c": 0})
	idx := threeVerses()

	used := domain.NewUsageState()
	used.VerseUsage["1.1"] = 1
	ranked := r.Rank("q", idx, used)
	assert.Equal(t, domain.VerseID("1.2"), ranked[0].VerseID, "used verse must drop below its equal")

	lastServed := domain.UsageState{LastServed: []domain.VerseID{"1.1"}}
	ranked = r.Rank("q", idx, lastServed)
	assert.Equal(t, domain.VerseID("1.2"), ranked[0].VerseID, "last served verse must drop below its equal")
	assert.InDelta(t, 0.25, ranked[1].FinalScore, 1e-9)
}

func TestRanker_ChapterBoost(t *testing.T) {
	r := newTestRanker(stubScorer{"a": 0.5, "b": 0, "c": 0.5})

	state := domain.NewUsageState()
	state.ChapterUsage[1] = 3

	ranked := r.Rank("q", threeVerses(), state)
	assert.Equal(t, domain.VerseID("2.1"), ranked[0].VerseID)
	assert.InDelta(t, 0.5/1.3, ranked[1].FinalScore, 1e-9)
}

func TestRanker_ZeroStateAndTies(t *testing.T) {
	r := newTestRanker(stubScorer{"a": 0.5, "b": 0.5, "c": 0.5})

	// A zero UsageState has nil maps and must read as no usage.
	ranked := r.Rank("q", threeVerses(), domain.UsageState{})
	assert.Equal(t, []domain.VerseID{"1.1", "1.2", "2.1"}, ids(ranked), "ties keep corpus order")
}

func TestRanker_Deterministic(t *testing.T) {
	r := newTestRanker(stubScorer{"a": 0.3, "b": 0.7, "c": 0.7})
	state := domain.NewUsageState()
	state.VerseUsage["1.2"] = 1

	first := r.Rank("q", threeVerses(), state)
	for range 5 {
		assert.Equal(t, first, r.Rank("q", threeVerses(), state))
	}
}

func TestRanker_DoesNotMutateState(t *testing.T) {
	r := newTestRanker(stubScorer{"a": 0.9})
	state := domain.NewUsageState()
	state.VerseUsage["1.1"] = 1

	r.Rank("q", threeVerses(), state)
	assert.Equal(t, map[domain.VerseID]int{"1.1": 1}, state.VerseUsage)
	assert.Empty(t, state.ChapterUsage)
}

func TestUniformJitter(t *testing.T) {
	j := UniformJitter(0.05)
	for range 1000 {
		v := j()
		assert.GreaterOrEqual(t, v, 0.95)
		assert.Less(t, v, 1.05)
	}
	assert.Equal(t, 1.0, UniformJitter(0)())
}
