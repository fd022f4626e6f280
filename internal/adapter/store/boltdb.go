package store

import (
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"gita/internal/domain"
	"gita/internal/port"
)

var (
	bucketSessions = []byte("sessions")
	bucketMeta     = []byte("meta")
)

// BoltStore keeps sessions in a single bbolt file, one CBOR value per
// session keyed by session ID.
type BoltStore struct {
	db *bbolt.DB
}

var _ port.SessionStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketSessions, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(id string) (*domain.Session, error) {
	var sess domain.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", port.ErrSessionNotFound, id)
		}
		return unmarshal(data, &sess)
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *BoltStore) Put(sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session without id")
	}
	data, err := marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(sess.ID), data)
	})
}

func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(id))
	})
}

func (s *BoltStore) List() ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			var sess domain.Session
			if err := unmarshal(v, &sess); err != nil {
				return fmt.Errorf("failed to decode session %s: %w", k, err)
			}
			sessions = append(sessions, &sess)
			return nil
		})
	})
	return sessions, err
}

// Clear removes every session but keeps the schema metadata.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketSessions); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketSessions)
		return err
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
