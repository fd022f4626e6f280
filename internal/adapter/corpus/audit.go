package corpus

import (
	"strings"

	"gita/internal/domain"
	"gita/internal/port"
)

// FieldReport describes how well one verse field survives normalization.
type FieldReport struct {
	Field       string
	Verses      int
	Empty       int // verses whose normalized text is empty
	Sparse      int // verses left with fewer than three tokens
	AvgTokens   float64
	Vocabulary  int
	EmptySample []domain.VerseID
}

// EmptyRatio is the fraction of verses that normalize to nothing.
func (r FieldReport) EmptyRatio() float64 {
	if r.Verses == 0 {
		return 0
	}
	return float64(r.Empty) / float64(r.Verses)
}

// Degenerate reports whether most verses carry no usable tokens.
func (r FieldReport) Degenerate() bool {
	return r.Verses > 0 && float64(r.Empty+r.Sparse)/float64(r.Verses) > 0.5
}

const sampleSize = 5

// Audit normalizes each candidate field of every verse and reports how
// much matchable text remains. Transliterated verse text usually loses
// most of its characters to the Latin-only filter.
func Audit(verses []domain.Verse, normalizer port.Normalizer) []FieldReport {
	fields := []string{FieldVerseText, FieldMeaning}
	reports := make([]FieldReport, 0, len(fields))
	for _, field := range fields {
		r := FieldReport{Field: field, Verses: len(verses)}
		vocab := make(map[string]struct{})
		total := 0
		for _, v := range verses {
			tokens := strings.Fields(normalizer.Normalize(MatchText(v, field)))
			total += len(tokens)
			for _, t := range tokens {
				vocab[t] = struct{}{}
			}
			switch {
			case len(tokens) == 0:
				r.Empty++
				if len(r.EmptySample) < sampleSize {
					r.EmptySample = append(r.EmptySample, v.ID())
				}
			case len(tokens) < 3:
				r.Sparse++
			}
		}
		if len(verses) > 0 {
			r.AvgTokens = float64(total) / float64(len(verses))
		}
		r.Vocabulary = len(vocab)
		reports = append(reports, r)
	}
	return reports
}
