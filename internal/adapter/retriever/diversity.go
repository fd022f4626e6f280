package retriever

import "gita/internal/domain"

// DiversitySelector picks the final verses from ranked candidates, taking
// the best verse of each chapter first and filling the rest by rank.
type DiversitySelector struct{}

func NewDiversitySelector() *DiversitySelector {
	return &DiversitySelector{}
}

// Select returns at most topN candidates: one per unseen chapter in rank
// order, then the highest remaining candidates regardless of chapter.
// The result is in selection order.
func (s *DiversitySelector) Select(ranked []domain.ScoredCandidate, topN int) []domain.ScoredCandidate {
	if topN <= 0 || len(ranked) == 0 {
		return nil
	}
	if topN > len(ranked) {
		topN = len(ranked)
	}

	selected := make([]domain.ScoredCandidate, 0, topN)
	taken := make([]bool, len(ranked))
	chapters := make(map[int]struct{})

	for i, c := range ranked {
		if len(selected) == topN {
			break
		}
		if _, seen := chapters[c.Chapter]; seen {
			continue
		}
		chapters[c.Chapter] = struct{}{}
		selected = append(selected, c)
		taken[i] = true
	}

	for i, c := range ranked {
		if len(selected) == topN {
			break
		}
		if !taken[i] {
			selected = append(selected, c)
		}
	}
	return selected
}
