package port

import "gita/internal/domain"

// VerseIndex is the read-only view of a loaded corpus the ranker scans.
type VerseIndex interface {
	Len() int

	// Verse returns the i-th verse in corpus order.
	Verse(i int) domain.Verse

	// Normalized returns the precomputed normalized text of the i-th verse.
	Normalized(i int) string
}
