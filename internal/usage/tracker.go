// Package usage records which verses a session has been served.
package usage

import (
	"gita/internal/domain"
	"gita/internal/port"
)

// Tracker derives the next UsageState after a selection and reports the
// resulting usage distribution.
type Tracker struct {
	observer port.Observer
}

func NewTracker(observer port.Observer) *Tracker {
	return &Tracker{observer: observer}
}

// RecordSelection returns a new state with every selected verse and its
// chapter counted once more and LastServed set to exactly the selection.
// The input state is left untouched.
func (t *Tracker) RecordSelection(state domain.UsageState, selected []domain.Verse) domain.UsageState {
	next := state.Clone()
	next.LastServed = make([]domain.VerseID, 0, len(selected))
	for _, v := range selected {
		id := v.ID()
		next.VerseUsage[id]++
		next.ChapterUsage[v.Chapter]++
		next.LastServed = append(next.LastServed, id)
	}

	if t.observer != nil {
		t.observer.Metric("usage_recorded", float64(len(selected)), map[string]any{
			"distinct_verses":   len(next.VerseUsage),
			"distinct_chapters": len(next.ChapterUsage),
			"total_selections":  next.TotalSelections(),
			"max_verse_usage":   maxCount(next.VerseUsage),
		})
	}
	return next
}

func maxCount[K comparable](m map[K]int) int {
	best := 0
	for _, n := range m {
		best = max(best, n)
	}
	return best
}
