package memstore

import (
	"fmt"
	"sync"

	"gita/internal/domain"
	"gita/internal/port"
)

// MemoryStore keeps sessions for the life of the process. Values are
// deep-copied on the way in and out so callers never share state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

var _ port.SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
	}
}

func (s *MemoryStore) Get(id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", port.ErrSessionNotFound, id)
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Put(sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) List() ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
