// Package monitor collects interaction counters and forwards metric and
// error events to structured logs.
package monitor

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"gita/internal/port"
)

// Health statuses.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// degradedErrorRate is the failed-response ratio above which the service
// reports itself degraded.
const degradedErrorRate = 0.1

// Monitor implements port.Observer and keeps running totals.
type Monitor struct {
	logger *slog.Logger
	now    func() time.Time

	mu                sync.Mutex
	totalInteractions int
	successful        int
	failed            int
	totalResponseTime time.Duration
	errors            int
	sessions          map[string]struct{}
	counters          map[string]int
}

var _ port.Observer = (*Monitor)(nil)

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger events are written to.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

func New(opts ...Option) *Monitor {
	m := &Monitor{
		logger:   slog.Default().With("component", "monitor"),
		now:      time.Now,
		sessions: make(map[string]struct{}),
		counters: make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Interaction records a new question on a session.
func (m *Monitor) Interaction(sessionID, question string) {
	m.mu.Lock()
	m.totalInteractions++
	m.sessions[sessionID] = struct{}{}
	m.mu.Unlock()

	m.logger.Info("new interaction", "session", sessionID, "question", question)
}

// Response records how an answer attempt ended. A nil err is a success.
func (m *Monitor) Response(sessionID string, elapsed time.Duration, err error) {
	m.mu.Lock()
	if err == nil {
		m.successful++
	} else {
		m.failed++
	}
	m.totalResponseTime += elapsed
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("response generation failed", "session", sessionID, "elapsed", elapsed, "err", err)
	}
}

// EndSession drops a session from the active set.
func (m *Monitor) EndSession(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

func (m *Monitor) Metric(name string, value float64, fields map[string]any) {
	m.mu.Lock()
	m.counters[name]++
	m.mu.Unlock()

	args := append([]any{"metric", name, "value", value}, fieldArgs(fields)...)
	m.logger.Info("performance metric", args...)
}

func (m *Monitor) Error(sessionID string, err error, fields map[string]any) {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()

	args := []any{
		"session", sessionID,
		"error_type", fmt.Sprintf("%T", err),
		"err", err,
	}
	args = append(args, fieldArgs(fields)...)
	m.logger.Error("error occurred", args...)
}

// fieldArgs flattens fields into slog key/value pairs in key order.
func fieldArgs(fields map[string]any) []any {
	keys := slices.Sorted(maps.Keys(fields))
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalInteractions   int            `json:"total_interactions"`
	SuccessfulResponses int            `json:"successful_responses"`
	FailedResponses     int            `json:"failed_responses"`
	AvgResponseTime     time.Duration  `json:"avg_response_time"`
	ActiveSessions      int            `json:"active_sessions"`
	Errors              int            `json:"errors"`
	Metrics             map[string]int `json:"metrics"`
}

// ErrorRate is failed responses over all responses, 0 before any response.
func (s Snapshot) ErrorRate() float64 {
	total := s.SuccessfulResponses + s.FailedResponses
	if total == 0 {
		return 0
	}
	return float64(s.FailedResponses) / float64(total)
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		TotalInteractions:   m.totalInteractions,
		SuccessfulResponses: m.successful,
		FailedResponses:     m.failed,
		ActiveSessions:      len(m.sessions),
		Errors:              m.errors,
		Metrics:             maps.Clone(m.counters),
	}
	if n := m.successful + m.failed; n > 0 {
		s.AvgResponseTime = m.totalResponseTime / time.Duration(n)
	}
	return s
}

// CacheInfo describes the answer cache for health reports.
type CacheInfo struct {
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
}

// Health is the service status report.
type Health struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Metrics        Snapshot  `json:"metrics"`
	ErrorRate      float64   `json:"error_rate"`
	Cache          CacheInfo `json:"cache"`
	ActiveSessions int       `json:"active_sessions"`
}

// Health reports degraded once more than a tenth of responses failed.
// activeSessions is the session store's own count, which can differ from
// the sessions this monitor has seen.
func (m *Monitor) Health(cache CacheInfo, activeSessions int) Health {
	snap := m.Snapshot()
	h := Health{
		Status:         StatusHealthy,
		Timestamp:      m.now(),
		Metrics:        snap,
		ErrorRate:      snap.ErrorRate(),
		Cache:          cache,
		ActiveSessions: activeSessions,
	}
	if h.ErrorRate > degradedErrorRate {
		h.Status = StatusDegraded
	}
	return h
}
