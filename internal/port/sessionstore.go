package port

import (
	"errors"

	"gita/internal/domain"
)

// ErrSessionNotFound is returned by SessionStore.Get for unknown IDs.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists conversation sessions between requests.
type SessionStore interface {
	Get(id string) (*domain.Session, error)

	Put(session *domain.Session) error

	Delete(id string) error

	List() ([]*domain.Session, error)

	Close() error
}
