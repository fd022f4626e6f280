package domain

import (
	"slices"
	"time"
)

// Session is one conversation: its usage state, history and bookkeeping.
type Session struct {
	ID           string      `json:"id" cbor:"id"`
	CreatedAt    time.Time   `json:"created_at" cbor:"created_at"`
	LastActivity time.Time   `json:"last_activity" cbor:"last_activity"`
	RequestCount int         `json:"request_count" cbor:"request_count"`
	Usage        UsageState  `json:"usage" cbor:"usage"`
	History      []Turn      `json:"history" cbor:"history"`
	Context      [][]VerseID `json:"context" cbor:"context"`
}

// NewSession returns an empty session created at now.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		Usage:        NewUsageState(),
	}
}

// Expired reports whether the session has been idle longer than timeout.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// RecentHistory returns at most n most recent turns.
func (s *Session) RecentHistory(n int) []Turn {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Usage = s.Usage.Clone()
	c.History = slices.Clone(s.History)
	for i := range c.History {
		c.History[i].Verses = slices.Clone(c.History[i].Verses)
	}
	if s.Context != nil {
		c.Context = make([][]VerseID, len(s.Context))
		for i, ids := range s.Context {
			c.Context[i] = slices.Clone(ids)
		}
	}
	return &c
}
