package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gita/config"
	"gita/internal/adapter/cache"
	"gita/internal/adapter/monitor"
	"gita/internal/adapter/session"
	"gita/internal/domain"
	"gita/internal/port"
)

// NoGuidanceAnswer is returned when no verse matches the question.
var NoGuidanceAnswer = domain.Answer{
	ShortAnswer: "I could not find verses that speak to this question. Try asking it in different words.",
}

// AskResult is the outcome of one question in a conversation.
type AskResult struct {
	SessionID string           `json:"session_id"`
	Selection domain.Selection `json:"selection"`
	Answer    domain.Answer    `json:"answer"`
	Elapsed   time.Duration    `json:"elapsed"`
}

// AskUseCase runs a full conversational turn: retrieval, answer synthesis
// and session bookkeeping.
type AskUseCase struct {
	retrieve     *RetrieveUseCase
	sessions     *session.Manager
	synth        port.Synthesizer
	cache        *cache.AnswerCache
	monitor      *monitor.Monitor
	limiter      *RateLimiter
	topN         int
	historyTurns int
	timeout      time.Duration
	logger       *slog.Logger
}

// AskOption configures an AskUseCase.
type AskOption func(*AskUseCase)

func WithAskLogger(l *slog.Logger) AskOption {
	return func(u *AskUseCase) { u.logger = l }
}

// WithRateLimiter replaces the limiter built from config.
func WithRateLimiter(l *RateLimiter) AskOption {
	return func(u *AskUseCase) { u.limiter = l }
}

// NewAskUseCase wires the conversation flow. When caching is enabled the
// synthesizer is fronted by an AnswerCache.
func NewAskUseCase(
	retrieve *RetrieveUseCase,
	sessions *session.Manager,
	synth port.Synthesizer,
	mon *monitor.Monitor,
	cfg *config.Config,
	opts ...AskOption,
) (*AskUseCase, error) {
	if synth == nil {
		return nil, ErrSynthesizerRequired
	}

	u := &AskUseCase{
		retrieve:     retrieve,
		sessions:     sessions,
		synth:        synth,
		monitor:      mon,
		topN:         cfg.Retrieve.TopN,
		historyTurns: cfg.Session.HistoryTurns,
		timeout:      cfg.Answer.Timeout,
		logger:       slog.Default().With("component", "ask"),
	}
	if cfg.Cache.Enabled {
		u.cache = cache.NewAnswerCache(cfg.Cache.MaxSize, cfg.Cache.TTL)
		u.synth = cache.NewCachedSynthesizer(synth, u.cache, monitor.Safe(mon))
	}
	if cfg.RateLimit.Enabled {
		u.limiter = NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// NewSessionID returns a fresh session ID.
func (u *AskUseCase) NewSessionID() string {
	return u.sessions.NewID()
}

// Ask answers question within the session sessionID, creating it when
// needed. clientID keys the rate limiter. On synthesis failure the result
// still carries the selection and the fallback answer, and the error wraps
// ErrSynthesisFailed.
func (u *AskUseCase) Ask(ctx context.Context, sessionID, clientID, question string) (AskResult, error) {
	if sessionID == "" {
		sessionID = u.sessions.NewID()
	}
	result := AskResult{SessionID: sessionID}

	if u.limiter != nil && !u.limiter.Allow(clientID) {
		u.monitor.Error(sessionID, ErrRateLimited, map[string]any{"client": clientID})
		return result, ErrRateLimited
	}

	u.monitor.Interaction(sessionID, question)
	start := time.Now()

	err := u.sessions.WithSession(ctx, sessionID, func(sess *domain.Session) error {
		sel, next := u.retrieve.FindRelevantVerses(ContextWithSession(ctx, sessionID), question, u.topN, sess.Usage)
		result.Selection = sel
		if sel.Empty() {
			result.Answer = NoGuidanceAnswer
			return nil
		}
		sess.Usage = next

		req := domain.AnswerRequest{
			Question:     question,
			Verses:       sel.Verses,
			PriorContext: u.priorContext(sess.Context),
			History:      sess.RecentHistory(u.historyTurns),
		}

		sctx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()

		answer, err := u.synth.Synthesize(sctx, req)
		result.Answer = answer
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
		}

		sess.History = append(sess.History, domain.Turn{
			Question: question,
			Answer:   answer,
			Verses:   sel.IDs(),
			At:       time.Now(),
		})
		sess.Context = append(sess.Context, sel.IDs())
		return nil
	})

	result.Elapsed = time.Since(start)
	u.monitor.Response(sessionID, result.Elapsed, err)
	if err != nil {
		if errors.Is(err, ErrSynthesisFailed) {
			u.logger.Warn("answer synthesis failed", "session", sessionID, "err", err)
		} else {
			u.monitor.Error(sessionID, err, map[string]any{"question": question})
		}
		return result, err
	}
	return result, nil
}

func (u *AskUseCase) priorContext(groups [][]domain.VerseID) [][]domain.Verse {
	if len(groups) == 0 {
		return nil
	}
	out := make([][]domain.Verse, 0, len(groups))
	for _, ids := range groups {
		verses := make([]domain.Verse, 0, len(ids))
		for _, id := range ids {
			if v, ok := u.retrieve.Lookup(id); ok {
				verses = append(verses, v)
			}
		}
		out = append(out, verses)
	}
	return out
}

// Session returns a copy of the stored session.
func (u *AskUseCase) Session(id string) (*domain.Session, error) {
	return u.sessions.Get(id)
}

// EndSession stops counting the session as active in health reports.
func (u *AskUseCase) EndSession(id string) {
	u.monitor.EndSession(id)
}

// Health reports service status with cache and session figures.
func (u *AskUseCase) Health() monitor.Health {
	var info monitor.CacheInfo
	if u.cache != nil {
		info = monitor.CacheInfo{
			Size:    u.cache.Size(),
			MaxSize: u.cache.MaxSize(),
			TTL:     u.cache.TTL(),
		}
	}
	active, err := u.sessions.Active()
	if err != nil {
		u.logger.Warn("failed to count active sessions", "err", err)
	}
	return u.monitor.Health(info, active)
}
