package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edgeseal/transit-go/internal/crypto"
)

// DefaultTTL bounds a session's lifetime unless refreshed.
const DefaultTTL = 15 * time.Minute

var (
	// ErrUnknownSession is returned when no session exists for an id.
	ErrUnknownSession = errors.New("unknown session")

	// ErrSessionExpired is returned when a session exists but its TTL has
	// elapsed. The entry is evicted as a side effect.
	ErrSessionExpired = errors.New("session expired")
)

// Session is one server-side session record.
type Session struct {
	ID        string
	Keys      *crypto.Keys
	ExpiresAt time.Time
}

// Store is the session table contract. The in-memory implementation below
// is the default; a distributed store can replace it without touching
// protocol logic.
type Store interface {
	// Create inserts a new session with fresh keys and returns it.
	Create(keys *crypto.Keys) (*Session, error)
	// Get returns the session for id, ErrUnknownSession if absent, or
	// ErrSessionExpired (evicting the entry) if past its TTL.
	Get(id string) (*Session, error)
	// Refresh extends a live session's expiry by the store's TTL.
	Refresh(id string)
	// Has reports whether id names a live, unexpired session.
	Has(id string) bool
	// Delete destroys a session immediately, expired or not.
	Delete(id string)
	// Prune evicts all expired sessions and returns how many went.
	Prune() int
}

// MemoryStore is the process-local Store. A single mutex guards the map;
// session churn is low enough that contention is not a concern.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session

	now func() time.Time // overridable for tests
}

// NewMemoryStore creates a store with the given TTL. A non-positive ttl
// falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create inserts a session under a fresh random 128-bit hex id, sweeping
// expired entries first.
func (s *MemoryStore) Create(keys *crypto.Keys) (*Session, error) {
	if !keys.Valid() {
		return nil, crypto.ErrInvalidKeys
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()

	sess := &Session{
		ID:        id,
		Keys:      keys,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.sessions[id] = sess
	return sess, nil
}

// Get implements Store.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Refresh implements Store. Refreshing an unknown or expired session is a
// no-op; the caller already validated the session this round trip.
func (s *MemoryStore) Refresh(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.now().After(sess.ExpiresAt) {
		return
	}
	sess.ExpiresAt = s.now().Add(s.ttl)
}

// Has implements Store. It never mutates the table, so it is safe as a
// pre-decryption freshness check.
func (s *MemoryStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	return ok && !s.now().After(sess.ExpiresAt)
}

// Delete implements Store.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Prune implements Store.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked()
}

func (s *MemoryStore) pruneLocked() int {
	now := s.now()
	pruned := 0
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Len reports the number of map-resident sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func newSessionID() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(raw[:]), nil
}
