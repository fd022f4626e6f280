package analyzer

import "testing"

func TestPorterStemmer_Stem(t *testing.T) {
	s := NewPorterStemmer()

	tests := []struct {
		word string
		want string
	}{
		{"caresses", "caress"},
		{"ponies", "poni"},
		{"running", "run"},
		{"hopeful", "hope"},
		{"meditation", "medit"},
		{"meditating", "medit"},
		{"go", "go"},
	}
	for _, tt := range tests {
		if got := s.Stem(tt.word); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"tree", 0},
		{"by", 0},
		{"trouble", 1},
		{"oats", 1},
		{"troubles", 2},
		{"private", 2},
	}
	for _, tt := range tests {
		if got := measure(tt.word); got != tt.want {
			t.Errorf("measure(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}
