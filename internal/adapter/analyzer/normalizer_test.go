package analyzer

import (
	"errors"
	"reflect"
	"testing"

	"gita/config"
)

func defaultNormalizeConfig() config.NormalizeConfig {
	return config.DefaultConfig().Normalize
}

func TestNormalizer_DefaultPipeline(t *testing.T) {
	n := NewNormalizer(defaultNormalizeConfig())

	tests := []struct {
		in   string
		want string
	}{
		{"I am feeling anxious about my duties at work!", "feeling anxious duty work"},
		{"They fought battles.", "fight battle"},
		{"", ""},
		{"the and of", ""},
		{"1234 !!!", ""},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer(defaultNormalizeConfig())
	once := n.Normalize("They fought battles for their duties.")
	if twice := n.Normalize(once); twice != once {
		t.Errorf("normalizing twice changed %q to %q", once, twice)
	}
}

func TestNormalizer_Floor(t *testing.T) {
	n := NewNormalizer(config.NormalizeConfig{Segmentation: "fields"})

	if got := n.Normalize("Hello, World"); got != "hello world" {
		t.Errorf("expected plain lowercase split, got %q", got)
	}
}

func TestNormalizer_FoldDiacritics(t *testing.T) {
	folded := NewNormalizer(config.NormalizeConfig{FoldDiacritics: true, Segmentation: "uax29"})
	plain := NewNormalizer(config.NormalizeConfig{Segmentation: "uax29"})

	if got := folded.Normalize("Kṛṣṇa"); got != "krsna" {
		t.Errorf("folded: got %q, want %q", got, "krsna")
	}
	if got := plain.Normalize("Kṛṣṇa"); got != "ka" {
		t.Errorf("plain: got %q, want %q", got, "ka")
	}
}

type failingTagger struct{}

func (failingTagger) Tag([]string) ([]POS, error) {
	return nil, errors.New("tagger unavailable")
}

type panickingTagger struct{}

func (panickingTagger) Tag([]string) ([]POS, error) {
	panic("boom")
}

func TestNormalizer_FailingStageIsSkipped(t *testing.T) {
	n := NewNormalizer(defaultNormalizeConfig(), WithTagger(failingTagger{}))

	// Without tags every token is lemmatized as a noun.
	if got := n.Normalize("They fought battles."); got != "fought battle" {
		t.Errorf("got %q, want %q", got, "fought battle")
	}
}

func TestNormalizer_PanicReturnsLowercasedInput(t *testing.T) {
	n := NewNormalizer(defaultNormalizeConfig(), WithTagger(panickingTagger{}))

	if got := n.Normalize("They FOUGHT"); got != "they fought" {
		t.Errorf("got %q, want %q", got, "they fought")
	}
}

func TestNormalizer_Stages(t *testing.T) {
	n := NewNormalizer(defaultNormalizeConfig())
	want := []string{"lowercase", "strip-non-latin", "segment:uax29", "pos-tag", "stopwords", "lemmatize"}
	if got := n.Stages(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	off := NewNormalizer(config.NormalizeConfig{FoldDiacritics: true, Segmentation: "fields", POSTagging: true})
	want = []string{"lowercase", "fold-diacritics", "strip-non-latin", "segment:fields"}
	if got := off.Stages(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
