// Package session provides the server-side session store backing the
// authenticated-user guard. Sessions are opaque server state: the cookie
// only carries a signed session ID, so deleting the session here revokes
// the cookie immediately.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no live session matches the ID.
// Expired sessions are indistinguishable from ones that never existed.
var ErrNotFound = errors.New("session not found")

// Session is the per-caller authenticated state.
type Session struct {
	ID     string
	UserID int64
}

// Store defines the session operations used by login, logout, and the guard.
type Store interface {
	// Create establishes a new session for userID and returns it.
	Create(ctx context.Context, userID int64) (*Session, error)

	// Get retrieves a live session by ID. Returns ErrNotFound for unknown
	// or expired IDs.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting a nonexistent session is not an error.
	Delete(ctx context.Context, id string) error
}

// memoryEntry holds a session plus its expiry for the in-memory store.
type memoryEntry struct {
	session Session
	expires time.Time
}

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex. Used in tests and single-process development.
type InMemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewInMemoryStore creates a new in-memory session store with the given TTL.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// Create establishes a new session for userID.
func (s *InMemoryStore) Create(ctx context.Context, userID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := Session{
		ID:     uuid.New().String(),
		UserID: userID,
	}
	s.sessions[sess.ID] = memoryEntry{
		session: sess,
		expires: s.now().Add(s.ttl),
	}
	return &sess, nil
}

// Get retrieves a live session by ID.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expires) {
		return nil, ErrNotFound
	}
	sess := entry.session
	return &sess, nil
}

// Delete removes a session. Idempotent.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
