package monitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(buf *bytes.Buffer) *Monitor {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return New(WithLogger(logger), WithClock(func() time.Time { return fixed }))
}

func TestMonitor_Counters(t *testing.T) {
	m := newTestMonitor(&bytes.Buffer{})

	m.Interaction("s1", "what is duty?")
	m.Interaction("s2", "how to find peace?")
	m.Interaction("s1", "and action?")
	m.Response("s1", 100*time.Millisecond, nil)
	m.Response("s2", 300*time.Millisecond, errors.New("timeout"))

	snap := m.Snapshot()
	assert.Equal(t, 3, snap.TotalInteractions)
	assert.Equal(t, 1, snap.SuccessfulResponses)
	assert.Equal(t, 1, snap.FailedResponses)
	assert.Equal(t, 200*time.Millisecond, snap.AvgResponseTime)
	assert.Equal(t, 2, snap.ActiveSessions)
	assert.InDelta(t, 0.5, snap.ErrorRate(), 1e-9)

	m.EndSession("s2")
	assert.Equal(t, 1, m.Snapshot().ActiveSessions)
}

func TestMonitor_Health(t *testing.T) {
	m := newTestMonitor(&bytes.Buffer{})
	cache := CacheInfo{Size: 3, MaxSize: 100, TTL: time.Hour}

	h := m.Health(cache, 4)
	assert.Equal(t, StatusHealthy, h.Status, "no responses yet")
	assert.Equal(t, 4, h.ActiveSessions)
	assert.Equal(t, cache, h.Cache)
	assert.Equal(t, 2024, h.Timestamp.Year())

	for range 9 {
		m.Response("s", time.Millisecond, nil)
	}
	m.Response("s", time.Millisecond, errors.New("boom"))
	assert.Equal(t, StatusHealthy, m.Health(cache, 1).Status, "exactly 10% is still healthy")

	m.Response("s", time.Millisecond, errors.New("boom"))
	h = m.Health(cache, 1)
	assert.Equal(t, StatusDegraded, h.Status)
	assert.Greater(t, h.ErrorRate, 0.1)
}

func TestMonitor_MetricAndErrorAreLogged(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMonitor(&buf)

	m.Metric("cache_hit", 1, map[string]any{"session": "s1", "key": "abc"})
	m.Error("s1", errors.New("corpus row broken"), map[string]any{"question": "why?"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var metric map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &metric))
	assert.Equal(t, "performance metric", metric["msg"])
	assert.Equal(t, "cache_hit", metric["metric"])
	assert.Equal(t, "abc", metric["key"])

	var errEvent map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &errEvent))
	assert.Equal(t, "ERROR", errEvent["level"])
	assert.Equal(t, "*errors.errorString", errEvent["error_type"])
	assert.Equal(t, "why?", errEvent["question"])

	snap := m.Snapshot()
	assert.Equal(t, 1, snap.Metrics["cache_hit"])
	assert.Equal(t, 1, snap.Errors)
}

type panickingObserver struct{}

func (panickingObserver) Metric(string, float64, map[string]any) { panic("sink down") }
func (panickingObserver) Error(string, error, map[string]any)    { panic("sink down") }

func TestSafe_SwallowsPanics(t *testing.T) {
	o := Safe(panickingObserver{})
	assert.NotPanics(t, func() {
		o.Metric("x", 1, nil)
		o.Error("s", errors.New("e"), nil)
	})
	assert.Equal(t, o, Safe(o), "wrapping twice is a no-op")

	assert.NotPanics(t, func() {
		Safe(nil).Metric("x", 1, nil)
		Nop().Error("s", nil, nil)
	})
}
