package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps sessions in memory and forgets them after a period of inactivity.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store. A zero ttl keeps sessions until deleted.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) expired(sess *Session) bool {
	if s.ttl == 0 {
		return false
	}
	return s.now().Sub(sess.Updated) > s.ttl
}

// Create starts a new session in AwaitingUpload.
func (s *Store) Create() Session {
	now := s.now()
	sess := &Session{
		ID:      uuid.NewString(),
		State:   AwaitingUpload,
		Created: now,
		Updated: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return *sess
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, ErrNotFound
	}
	return *sess, nil
}

// Update applies fn to the session under the store lock.
// Changes are discarded when fn returns an error.
func (s *Store) Update(id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, ErrNotFound
	}

	draft := *sess
	if err := fn(&draft); err != nil {
		return *sess, err
	}
	draft.Updated = s.now()
	*sess = draft

	return draft, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Prune removes expired sessions and returns how many were dropped.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of sessions held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
