package port

import "gita/internal/domain"

type DiversitySelector interface {
	Select(ranked []domain.ScoredCandidate, topN int) []domain.ScoredCandidate
}
