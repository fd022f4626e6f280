package domain

import (
	"fmt"
	"time"
)

// VerseID identifies a verse as "{chapter}.{verse_number}".
type VerseID string

// Verse is a single addressable unit of the corpus.
type Verse struct {
	Chapter     int    `json:"chapter"`
	VerseNumber int    `json:"verse_number"`
	VerseText   string `json:"verse_text"`
	Meaning     string `json:"meaning"`
}

// ID returns the verse identity key.
func (v Verse) ID() VerseID {
	return NewVerseID(v.Chapter, v.VerseNumber)
}

func NewVerseID(chapter, verse int) VerseID {
	return VerseID(fmt.Sprintf("%d.%d", chapter, verse))
}

// ScoredCandidate is one verse scored during a single ranking pass.
type ScoredCandidate struct {
	Index         int     `json:"index"`
	RawSimilarity float64 `json:"raw_similarity"`
	FinalScore    float64 `json:"final_score"`
	Chapter       int     `json:"chapter"`
	VerseID       VerseID `json:"verse_id"`
}

// SelectedVerse is a verse returned to the caller together with its selection metadata.
type SelectedVerse struct {
	Verse
	VerseID       VerseID `json:"verse_id"`
	RawSimilarity float64 `json:"raw_similarity"`
	FinalScore    float64 `json:"final_score"`
	Rank          int     `json:"rank"`
	DiversityPick bool    `json:"diversity_pick"`
}

// Selection is the ordered result of one retrieval.
type Selection struct {
	Question   string          `json:"question"`
	Normalized string          `json:"normalized"`
	Verses     []SelectedVerse `json:"verses"`
}

// Empty reports whether no guidance is available.
func (s Selection) Empty() bool {
	return len(s.Verses) == 0
}

// IDs returns the selected verse IDs in selection order.
func (s Selection) IDs() []VerseID {
	ids := make([]VerseID, len(s.Verses))
	for i, v := range s.Verses {
		ids[i] = v.VerseID
	}
	return ids
}

// Turn is one question/answer exchange in a conversation.
type Turn struct {
	Question string    `json:"question"`
	Answer   Answer    `json:"answer"`
	Verses   []VerseID `json:"verses"`
	At       time.Time `json:"at"`
}

// Answer is what the synthesizer produces.
type Answer struct {
	ShortAnswer         string `json:"short_answer"`
	DetailedExplanation string `json:"detailed_explanation"`
}

// Text joins both parts of the answer.
func (a Answer) Text() string {
	if a.DetailedExplanation == "" {
		return a.ShortAnswer
	}
	if a.ShortAnswer == "" {
		return a.DetailedExplanation
	}
	return a.ShortAnswer + "\n\n" + a.DetailedExplanation
}

// AnswerRequest is the input to answer synthesis.
type AnswerRequest struct {
	Question     string
	Verses       []SelectedVerse
	PriorContext [][]Verse
	History      []Turn
}
