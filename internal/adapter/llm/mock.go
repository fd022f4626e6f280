package llm

import (
	"context"
	"fmt"
	"strings"

	"gita/internal/domain"
	"gita/internal/port"
)

// MockSynthesizer answers by quoting the selected verses. It needs no
// network and is used for offline runs and tests.
type MockSynthesizer struct{}

var _ port.Synthesizer = MockSynthesizer{}

func (MockSynthesizer) ModelName() string { return "mock" }

func (MockSynthesizer) Synthesize(ctx context.Context, req domain.AnswerRequest) (domain.Answer, error) {
	if err := ctx.Err(); err != nil {
		return FallbackAnswer, err
	}
	if len(req.Verses) == 0 {
		return FallbackAnswer, ErrEmptyResponse
	}

	first := req.Verses[0]
	short := fmt.Sprintf("Reflect on Chapter %d, Verse %d: %s", first.Chapter, first.VerseNumber, first.Meaning)

	var b strings.Builder
	for i, v := range req.Verses[1:] {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Chapter %d, Verse %d teaches: %s", v.Chapter, v.VerseNumber, v.Meaning)
	}
	return domain.Answer{ShortAnswer: short, DetailedExplanation: b.String()}, nil
}
