// Package session owns conversation sessions: it creates them, serializes
// work on each one and sweeps out the ones that went idle.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gita/config"
	"gita/internal/domain"
	"gita/internal/port"
)

// Manager wraps a SessionStore with per-session locking and expiry.
type Manager struct {
	store      port.SessionStore
	timeout    time.Duration
	sweepEvery int
	observer   port.Observer
	logger     *slog.Logger
	now        func() time.Time

	// Per-session locks, never removed.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithObserver(o port.Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store port.SessionStore, cfg config.SessionConfig, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		timeout:    cfg.Timeout,
		sweepEvery: cfg.SweepEvery,
		logger:     slog.Default().With("component", "session"),
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID returns a fresh random session ID.
func (m *Manager) NewID() string {
	return uuid.NewString()
}

func (m *Manager) lock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// WithSession runs fn on the session with the given ID while holding that
// session's lock, then saves it. Unknown or expired sessions start fresh.
// The session is saved even when fn fails so activity bookkeeping sticks;
// fn decides what else it changes.
func (m *Manager) WithSession(ctx context.Context, id string, fn func(*domain.Session) error) error {
	if id == "" {
		return errors.New("empty session id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	sess, err := m.touch(id)
	if err != nil {
		return err
	}

	fnErr := fn(sess)

	if err := m.store.Put(sess); err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}

	if m.sweepEvery > 0 && sess.RequestCount > 0 && sess.RequestCount%m.sweepEvery == 0 {
		if _, err := m.Sweep(); err != nil {
			m.logger.Warn("session sweep failed", "err", err)
		}
	}
	return fnErr
}

// touch loads or creates the session and records the new request.
func (m *Manager) touch(id string) (*domain.Session, error) {
	now := m.now()
	sess, err := m.store.Get(id)
	switch {
	case errors.Is(err, port.ErrSessionNotFound):
		m.logger.Debug("session created", "session", id)
		return domain.NewSession(id, now), nil
	case err != nil:
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	if m.timeout > 0 && sess.Expired(now, m.timeout) {
		m.logger.Info("session expired, starting over", "session", id, "idle", now.Sub(sess.LastActivity))
		m.metric("session_expired", 1, map[string]any{"session": id})
		return domain.NewSession(id, now), nil
	}

	sess.LastActivity = now
	sess.RequestCount++
	return sess, nil
}

// Get returns a copy of a stored session.
func (m *Manager) Get(id string) (*domain.Session, error) {
	return m.store.Get(id)
}

// List returns all stored sessions, expired ones included.
func (m *Manager) List() ([]*domain.Session, error) {
	return m.store.List()
}

// Active counts the sessions that have not expired.
func (m *Manager) Active() (int, error) {
	sessions, err := m.store.List()
	if err != nil {
		return 0, err
	}
	now := m.now()
	n := 0
	for _, s := range sessions {
		if m.timeout <= 0 || !s.Expired(now, m.timeout) {
			n++
		}
	}
	return n, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	return m.store.Delete(id)
}

// Sweep deletes expired sessions and returns how many were removed.
// Sessions locked by a running request are skipped.
func (m *Manager) Sweep() (int, error) {
	if m.timeout <= 0 {
		return 0, nil
	}
	sessions, err := m.store.List()
	if err != nil {
		return 0, err
	}

	now := m.now()
	removed := 0
	for _, s := range sessions {
		if !s.Expired(now, m.timeout) {
			continue
		}
		l := m.lock(s.ID)
		if !l.TryLock() {
			continue
		}
		err := m.store.Delete(s.ID)
		l.Unlock()
		if err != nil {
			return removed, fmt.Errorf("failed to delete session %s: %w", s.ID, err)
		}
		removed++
	}

	m.metric("session_cleanup", float64(removed), map[string]any{
		"remaining": len(sessions) - removed,
	})
	return removed, nil
}

func (m *Manager) metric(name string, value float64, fields map[string]any) {
	if m.observer != nil {
		m.observer.Metric(name, value, fields)
	}
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
