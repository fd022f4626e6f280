package analyzer

import (
	"reflect"
	"testing"
)

func TestHeuristicTagger_Tag(t *testing.T) {
	tagger := NewHeuristicTagger()

	tests := []struct {
		name   string
		tokens []string
		want   []POS
	}{
		{
			name:   "verb after pronoun and infinitive marker",
			tokens: []string{"i", "want", "to", "fight"},
			want:   []POS{Noun, Verb, Noun, Verb},
		},
		{
			name:   "gerund after determiner is a noun",
			tokens: []string{"the", "fighting"},
			want:   []POS{Noun, Noun},
		},
		{
			name:   "lexicon adjectives and adverbs",
			tokens: []string{"truly", "peaceful", "slowly"},
			want:   []POS{Adverb, Adjective, Adverb},
		},
		{
			name:   "empty",
			tokens: nil,
			want:   []POS{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tagger.Tag(tt.tokens)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPOS_String(t *testing.T) {
	if Verb.String() != "verb" || Noun.String() != "noun" || Adverb.String() != "adv" {
		t.Errorf("unexpected POS names: %s %s %s", Verb, Noun, Adverb)
	}
}
