package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gita/config"
	"gita/internal/adapter/memstore"
	"gita/internal/domain"
	"gita/internal/port"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type metricLog struct {
	mu    sync.Mutex
	names []string
	vals  []float64
}

func (l *metricLog) Metric(name string, value float64, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
	l.vals = append(l.vals, value)
}

func (l *metricLog) Error(string, error, map[string]any) {}

var _ port.Observer = (*metricLog)(nil)

func newTestManager(t *testing.T) (*Manager, *clock, *metricLog) {
	t.Helper()
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	metrics := &metricLog{}
	cfg := config.DefaultConfig().Session
	m := NewManager(memstore.NewMemoryStore(), cfg, WithClock(clk.Now), WithObserver(metrics))
	return m, clk, metrics
}

func TestManager_CreatesAndTouches(t *testing.T) {
	m, clk, _ := newTestManager(t)
	ctx := context.Background()
	id := m.NewID()

	require.NoError(t, m.WithSession(ctx, id, func(s *domain.Session) error {
		assert.Equal(t, 0, s.RequestCount)
		s.Usage.VerseUsage["2.47"] = 1
		return nil
	}))

	clk.Advance(time.Minute)
	require.NoError(t, m.WithSession(ctx, id, func(s *domain.Session) error {
		assert.Equal(t, 1, s.RequestCount)
		assert.Equal(t, 1, s.Usage.UsageCount("2.47"))
		assert.Equal(t, clk.Now(), s.LastActivity)
		return nil
	}))
}

func TestManager_SavesEvenWhenFnFails(t *testing.T) {
	m, _, _ := newTestManager(t)
	boom := errors.New("synthesis failed")

	err := m.WithSession(context.Background(), "s1", func(s *domain.Session) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = m.Get("s1")
	assert.NoError(t, err)
}

func TestManager_ExpiredSessionStartsOver(t *testing.T) {
	m, clk, metrics := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.WithSession(ctx, "s1", func(s *domain.Session) error {
		s.Usage.VerseUsage["1.1"] = 3
		return nil
	}))

	clk.Advance(2 * time.Hour)
	require.NoError(t, m.WithSession(ctx, "s1", func(s *domain.Session) error {
		assert.Equal(t, 0, s.Usage.UsageCount("1.1"))
		assert.Equal(t, 0, s.RequestCount)
		return nil
	}))
	assert.Contains(t, metrics.names, "session_expired")
}

func TestManager_SweepEveryNthRequest(t *testing.T) {
	m, clk, metrics := newTestManager(t)
	ctx := context.Background()
	noop := func(*domain.Session) error { return nil }

	require.NoError(t, m.WithSession(ctx, "old", noop))
	clk.Advance(2 * time.Hour)

	// Request counts 0..9 on "live"; the tenth request (count 10) sweeps.
	for range 10 {
		require.NoError(t, m.WithSession(ctx, "live", noop))
	}
	_, err := m.Get("old")
	require.NoError(t, err, "no sweep before the tenth follow-up request")

	require.NoError(t, m.WithSession(ctx, "live", noop))
	_, err = m.Get("old")
	assert.ErrorIs(t, err, port.ErrSessionNotFound)

	require.NotEmpty(t, metrics.names)
	assert.Equal(t, "session_cleanup", metrics.names[len(metrics.names)-1])
	assert.Equal(t, 1.0, metrics.vals[len(metrics.vals)-1])

	n, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestManager_SerializesSameSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.WithSession(ctx, "shared", func(s *domain.Session) error {
				s.Usage.VerseUsage["1.1"]++
				return nil
			}))
		}()
	}
	wg.Wait()

	s, err := m.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, 50, s.Usage.UsageCount("1.1"), "no lost updates")
	assert.Equal(t, 49, s.RequestCount)
}

func TestManager_Delete(t *testing.T) {
	m, _, _ := newTestManager(t)
	require.NoError(t, m.WithSession(context.Background(), "s1", func(*domain.Session) error { return nil }))
	require.NoError(t, m.Delete("s1"))

	_, err := m.Get("s1")
	assert.ErrorIs(t, err, port.ErrSessionNotFound)
}

func TestManager_RejectsEmptyIDAndCanceledContext(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.Error(t, m.WithSession(context.Background(), "", func(*domain.Session) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.WithSession(ctx, "s1", func(*domain.Session) error { return nil }), context.Canceled)
}
