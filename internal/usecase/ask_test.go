package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gita/config"
	"gita/internal/adapter/memstore"
	"gita/internal/adapter/monitor"
	"gita/internal/adapter/session"
	"gita/internal/domain"
)

type stubSynth struct {
	mu       sync.Mutex
	calls    int
	requests []domain.AnswerRequest
	err      error
}

func (s *stubSynth) ModelName() string { return "stub" }

func (s *stubSynth) Synthesize(_ context.Context, req domain.AnswerRequest) (domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.requests = append(s.requests, req)
	if s.err != nil {
		return domain.Answer{ShortAnswer: "sorry"}, s.err
	}
	return domain.Answer{ShortAnswer: "answer to " + req.Question}, nil
}

type askFixture struct {
	ask      *AskUseCase
	synth    *stubSynth
	monitor  *monitor.Monitor
	sessions *session.Manager
}

func newAskFixture(t *testing.T, mutate func(*config.Config), opts ...AskOption) askFixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Retrieve.TopN = 2
	cfg.Cache.Enabled = false
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mon := monitor.New(monitor.WithLogger(logger))
	sessions := session.NewManager(memstore.NewMemoryStore(), cfg.Session, session.WithLogger(logger))
	synth := &stubSynth{}

	ask, err := NewAskUseCase(newRetrieve(threeScores, nil), sessions, synth, mon, cfg,
		append([]AskOption{WithAskLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return askFixture{ask: ask, synth: synth, monitor: mon, sessions: sessions}
}

func TestNewAskUseCase_RequiresSynthesizer(t *testing.T) {
	_, err := NewAskUseCase(nil, nil, nil, monitor.New(), config.DefaultConfig())
	assert.ErrorIs(t, err, ErrSynthesizerRequired)
}

func TestAsk_RecordsTurn(t *testing.T) {
	f := newAskFixture(t, nil)
	ctx := context.Background()

	res, err := f.ask.Ask(ctx, "s-1", "client", "duty")
	require.NoError(t, err)
	assert.Equal(t, "s-1", res.SessionID)
	assert.Equal(t, []domain.VerseID{"1.1", "2.1"}, res.Selection.IDs())
	assert.Equal(t, "answer to duty", res.Answer.ShortAnswer)

	sess, err := f.ask.Session("s-1")
	require.NoError(t, err)
	require.Len(t, sess.History, 1)
	assert.Equal(t, "duty", sess.History[0].Question)
	assert.Equal(t, []domain.VerseID{"1.1", "2.1"}, sess.History[0].Verses)
	assert.Equal(t, [][]domain.VerseID{{"1.1", "2.1"}}, sess.Context)
	assert.Equal(t, 1, sess.Usage.UsageCount("1.1"))

	snap := f.monitor.Snapshot()
	assert.Equal(t, 1, snap.TotalInteractions)
	assert.Equal(t, 1, snap.SuccessfulResponses)
}

func TestAsk_CarriesHistoryAndContext(t *testing.T) {
	f := newAskFixture(t, func(c *config.Config) { c.Session.HistoryTurns = 1 })
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		_, err := f.ask.Ask(ctx, "s-1", "client", q)
		require.NoError(t, err)
	}

	require.Len(t, f.synth.requests, 3)
	assert.Empty(t, f.synth.requests[0].History)
	assert.Empty(t, f.synth.requests[0].PriorContext)

	last := f.synth.requests[2]
	require.Len(t, last.History, 1)
	assert.Equal(t, "second", last.History[0].Question)
	require.Len(t, last.PriorContext, 2)
	assert.Equal(t, "A", last.PriorContext[0][0].VerseText)

	sess, err := f.ask.Session("s-1")
	require.NoError(t, err)
	assert.Len(t, sess.History, 3)
}

func TestAsk_NewSessionWhenIDEmpty(t *testing.T) {
	f := newAskFixture(t, nil)

	res, err := f.ask.Ask(context.Background(), "", "client", "duty")
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)

	_, err = f.ask.Session(res.SessionID)
	assert.NoError(t, err)
}

func TestAsk_NoGuidance(t *testing.T) {
	f := newAskFixture(t, nil)

	res, err := f.ask.Ask(context.Background(), "s-1", "client", "the")
	require.NoError(t, err)
	assert.True(t, res.Selection.Empty())
	assert.Equal(t, NoGuidanceAnswer, res.Answer)
	assert.Zero(t, f.synth.calls)

	sess, err := f.ask.Session("s-1")
	require.NoError(t, err)
	assert.Empty(t, sess.History)
	assert.Zero(t, sess.Usage.TotalSelections())
}

func TestAsk_SynthesisFailure(t *testing.T) {
	f := newAskFixture(t, nil)
	f.synth.err = errors.New("model unavailable")

	res, err := f.ask.Ask(context.Background(), "s-1", "client", "duty")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSynthesisFailed)
	assert.Equal(t, "sorry", res.Answer.ShortAnswer)
	assert.False(t, res.Selection.Empty())

	sess, err := f.ask.Session("s-1")
	require.NoError(t, err)
	assert.Empty(t, sess.History, "failed turns are not remembered")
	assert.Equal(t, 1, sess.Usage.UsageCount("1.1"), "served verses still count")

	snap := f.monitor.Snapshot()
	assert.Equal(t, 1, snap.FailedResponses)
	assert.Equal(t, monitor.StatusDegraded, f.ask.Health().Status)
}

func TestAsk_RateLimited(t *testing.T) {
	f := newAskFixture(t, nil, WithRateLimiter(NewRateLimiter(1, time.Minute)))
	ctx := context.Background()

	_, err := f.ask.Ask(ctx, "s-1", "client-a", "duty")
	require.NoError(t, err)

	_, err = f.ask.Ask(ctx, "s-1", "client-a", "duty")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = f.ask.Ask(ctx, "s-2", "client-b", "duty")
	assert.NoError(t, err)

	assert.Equal(t, 2, f.synth.calls)
	assert.Equal(t, 1, f.monitor.Snapshot().Errors)
}

func TestAsk_RepeatedQuestionServedFromCache(t *testing.T) {
	f := newAskFixture(t, func(c *config.Config) {
		c.Cache.Enabled = true
		c.Retrieve.TopN = 3
	})
	ctx := context.Background()

	first, err := f.ask.Ask(ctx, "s-1", "client", "duty")
	require.NoError(t, err)
	second, err := f.ask.Ask(ctx, "s-1", "client", "duty")
	require.NoError(t, err)

	assert.Equal(t, first.Selection.IDs(), second.Selection.IDs())
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, 1, f.synth.calls)

	snap := f.monitor.Snapshot()
	assert.Equal(t, 1, snap.Metrics["cache_miss"])
	assert.Equal(t, 1, snap.Metrics["cache_hit"])

	h := f.ask.Health()
	assert.Equal(t, monitor.StatusHealthy, h.Status)
	assert.Equal(t, 1, h.Cache.Size)
	assert.Equal(t, 100, h.Cache.MaxSize)
	assert.Equal(t, 1, h.ActiveSessions)
}

func TestRateLimiter_Refills(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("c"))
	assert.True(t, l.Allow("c"))
	assert.False(t, l.Allow("c"))

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("c"))
	assert.False(t, l.Allow("c"))
}
