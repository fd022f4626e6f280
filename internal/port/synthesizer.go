package port

import (
	"context"

	"gita/internal/domain"
)

// Synthesizer produces an answer from a question and the verses selected for it.
type Synthesizer interface {
	// Synthesize generates the answer. Implementations must honor ctx deadlines.
	Synthesize(ctx context.Context, req domain.AnswerRequest) (domain.Answer, error)

	// ModelName returns the name of the model behind the synthesizer.
	ModelName() string
}
