package analyzer

import (
	"reflect"
	"testing"
)

func TestStripNonLatin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Don't worry, be happy! 42", "Dont worry be happy "},
		{"Chapter 2.47", "Chapter "},
		{"कर्म karma", " karma"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripNonLatin(tt.in); got != tt.want {
			t.Errorf("stripNonLatin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSegmenter_UAX29(t *testing.T) {
	seg := NewSegmenter("uax29")
	if seg.Name() != "uax29" {
		t.Fatalf("expected uax29 segmenter, got %s", seg.Name())
	}

	got, err := seg.Segment("dont  worry\tbe happy ")
	if err != nil {
		t.Fatalf("segment failed: %v", err)
	}
	want := []string{"dont", "worry", "be", "happy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSegmenter_UnknownModeFallsBackToFields(t *testing.T) {
	seg := NewSegmenter("nonsense")
	if seg.Name() != "fields" {
		t.Fatalf("expected fields segmenter, got %s", seg.Name())
	}

	got, _ := seg.Segment("  act without   attachment ")
	want := []string{"act", "without", "attachment"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSegmenter_EmptyInput(t *testing.T) {
	for _, mode := range []string{"uax29", "fields"} {
		got, err := NewSegmenter(mode).Segment("")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", mode, err)
		}
		if len(got) != 0 {
			t.Errorf("%s: expected no tokens, got %v", mode, got)
		}
	}
}

func TestDefaultStopwords(t *testing.T) {
	sw := defaultStopwords()
	for _, w := range []string{"the", "and", "i", "my", "don", "was"} {
		if _, ok := sw[w]; !ok {
			t.Errorf("expected %q to be a stop word", w)
		}
	}
	for _, w := range []string{"duty", "fear", "karma", "peace"} {
		if _, ok := sw[w]; ok {
			t.Errorf("%q should not be a stop word", w)
		}
	}
}
