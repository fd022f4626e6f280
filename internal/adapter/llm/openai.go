// Package llm turns selected verses into an answer using a chat model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"gita/config"
	"gita/internal/domain"
	"gita/internal/port"
)

// FallbackAnswer is returned alongside the error when synthesis fails.
var FallbackAnswer = domain.Answer{
	ShortAnswer: "Forgive me, dear one, but I am unable to provide guidance at this moment. Please ask your question again.",
}

var (
	ErrMissingAPIKey = errors.New("missing API key")
	ErrEmptyResponse = errors.New("model returned no choices")
)

// Synthesizer implements port.Synthesizer over an OpenAI compatible chat API.
type Synthesizer struct {
	client      llms.Model
	model       string
	temperature float64
	maxTokens   int
	parser      *AnswerParser
	logger      *slog.Logger
}

var _ port.Synthesizer = (*Synthesizer)(nil)

// Option configures a Synthesizer.
type Option func(*Synthesizer)

func WithLogger(l *slog.Logger) Option {
	return func(s *Synthesizer) { s.logger = l }
}

// WithClient replaces the chat model, for tests and alternate providers.
func WithClient(m llms.Model) Option {
	return func(s *Synthesizer) { s.client = m }
}

// NewSynthesizer builds a synthesizer from cfg. The API key is read from
// the environment variable named by cfg.APIKeyEnv; a custom base URL with
// no key uses "none" for local servers that skip authentication.
func NewSynthesizer(cfg config.AnswerConfig, opts ...Option) (*Synthesizer, error) {
	s := &Synthesizer{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		parser:      NewAnswerParser(),
		logger:      slog.Default().With("component", "llm"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil {
		return s, nil
	}

	token := os.Getenv(cfg.APIKeyEnv)
	if token == "" {
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: set %s", ErrMissingAPIKey, cfg.APIKeyEnv)
		}
		token = "none"
	}

	clientOpts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}
	s.client = client
	return s, nil
}

// FromConfig picks the synthesizer named by cfg.Provider.
func FromConfig(cfg config.AnswerConfig, opts ...Option) (port.Synthesizer, error) {
	switch cfg.Provider {
	case "mock":
		return MockSynthesizer{}, nil
	case "openai", "":
		return NewSynthesizer(cfg, opts...)
	default:
		return nil, fmt.Errorf("unknown answer provider %q", cfg.Provider)
	}
}

func (s *Synthesizer) ModelName() string {
	return s.model
}

// Synthesize asks the model for guidance on req. On failure it returns
// FallbackAnswer together with the error.
func (s *Synthesizer) Synthesize(ctx context.Context, req domain.AnswerRequest) (domain.Answer, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return FallbackAnswer, err
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt.System),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt.User),
			},
		},
	}

	response, err := s.client.GenerateContent(ctx, content,
		llms.WithTemperature(s.temperature),
		llms.WithMaxTokens(s.maxTokens),
	)
	if err != nil {
		s.logger.Error("failed to generate content", "model", s.model, "err", err)
		return FallbackAnswer, fmt.Errorf("generate answer: %w", err)
	}
	if len(response.Choices) < 1 {
		s.logger.Warn("no choices returned from model", "model", s.model)
		return FallbackAnswer, ErrEmptyResponse
	}

	answer := s.parser.Parse(response.Choices[0].Content)
	if answer.ShortAnswer == "" {
		return FallbackAnswer, ErrEmptyResponse
	}
	return answer, nil
}
