package retriever

import (
	"log/slog"
	"strings"

	"gita/internal/port"
)

// SimilarityScorer scores two normalized texts by token overlap, blended
// with a semantic term when a sense network is available.
type SimilarityScorer struct {
	related        port.Relatedness
	jaccardWeight  float64
	semanticWeight float64
	logger         *slog.Logger
}

// ScorerOption configures a SimilarityScorer.
type ScorerOption func(*SimilarityScorer)

// WithRelatedness enables the semantic term.
func WithRelatedness(r port.Relatedness) ScorerOption {
	return func(s *SimilarityScorer) { s.related = r }
}

// WithWeights sets the jaccard and semantic weights. They are normalized
// by their sum, so only the ratio matters.
func WithWeights(jaccard, semantic float64) ScorerOption {
	return func(s *SimilarityScorer) {
		if jaccard >= 0 && semantic >= 0 && jaccard+semantic > 0 {
			s.jaccardWeight = jaccard
			s.semanticWeight = semantic
		}
	}
}

// WithScorerLogger sets the logger used when scoring fails.
func WithScorerLogger(l *slog.Logger) ScorerOption {
	return func(s *SimilarityScorer) { s.logger = l }
}

// NewSimilarityScorer returns a scorer with 0.6/0.4 weights and no
// semantic resource, which makes it pure jaccard.
func NewSimilarityScorer(opts ...ScorerOption) *SimilarityScorer {
	s := &SimilarityScorer{
		jaccardWeight:  0.6,
		semanticWeight: 0.4,
		logger:         slog.Default().With("component", "scorer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Semantic reports whether the semantic term is in use.
func (s *SimilarityScorer) Semantic() bool {
	return s.related != nil && s.related.Available()
}

// Score returns a similarity in [0, 1]. It returns 0 on any internal failure.
func (s *SimilarityScorer) Score(a, b string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("similarity failed", "panic", r)
			score = 0
		}
	}()

	setA, setB := tokenSet(a), tokenSet(b)
	jac := jaccard(setA, setB)
	if !s.Semantic() {
		return jac
	}

	sem := s.semantic(setA, setB)
	total := s.jaccardWeight + s.semanticWeight
	return clamp01((s.jaccardWeight*jac + s.semanticWeight*sem) / total)
}

// semantic counts tokens of a that have a related token in b.
func (s *SimilarityScorer) semantic(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched := 0
	for ta := range a {
		for tb := range b {
			if s.related.Related(ta, tb) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(max(len(a), len(b)))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// jaccard computes |A∩B| / |A∪B|, 0 when the union is empty.
func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// JaccardSimilarity is the plain token-set jaccard of two normalized texts.
func JaccardSimilarity(a, b string) float64 {
	return jaccard(tokenSet(a), tokenSet(b))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
