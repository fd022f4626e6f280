package analyzer

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Segmenter splits cleaned text into word tokens.
type Segmenter interface {
	Name() string
	Segment(text string) ([]string, error)
}

// NewSegmenter returns the segmenter for the configured mode.
// Unknown modes get the whitespace splitter.
func NewSegmenter(mode string) Segmenter {
	if mode == "uax29" {
		return uax29Segmenter{}
	}
	return fieldsSegmenter{}
}

// uax29Segmenter uses Unicode text segmentation (UAX #29) word boundaries.
type uax29Segmenter struct{}

func (uax29Segmenter) Name() string { return "uax29" }

func (uax29Segmenter) Segment(text string) ([]string, error) {
	var out []string
	tokens := words.FromString(text)
	for tokens.Next() {
		w := tokens.Value()
		if isWord(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

// fieldsSegmenter is the floor: plain whitespace split.
type fieldsSegmenter struct{}

func (fieldsSegmenter) Name() string { return "fields" }

func (fieldsSegmenter) Segment(text string) ([]string, error) {
	return strings.Fields(text), nil
}

// isWord reports whether a segment contains at least one letter.
func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// stripNonLatin drops every rune outside a-z, A-Z and whitespace.
// Digits, punctuation and non-Latin scripts vanish without leaving a gap,
// so "don't" becomes "dont".
func stripNonLatin(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
