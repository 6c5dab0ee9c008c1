package edgeseal

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/edgeseal/transit-go/internal/crypto"
)

// clientSession is the client's independently-derived mirror of a server
// session. The keys were never transmitted; both sides computed them from
// the handshake exchange.
type clientSession struct {
	id        string
	keys      *crypto.Keys
	expiresAt time.Time
}

func (s *clientSession) live(now time.Time) bool {
	return s != nil && now.Before(s.expiresAt)
}

// sessionManager caches at most one client session. Concurrent callers
// that find the cache cold join a single in-flight handshake rather than
// each starting their own. The cache is intentionally not persisted; a
// process restart simply handshakes again.
type sessionManager struct {
	mu      sync.Mutex
	current *clientSession
	group   singleflight.Group

	handshake func(ctx context.Context) (*clientSession, error)
	now       func() time.Time
}

func newSessionManager(handshake func(ctx context.Context) (*clientSession, error)) *sessionManager {
	return &sessionManager{
		handshake: handshake,
		now:       time.Now,
	}
}

// ensure returns the cached session if it is still live, otherwise
// performs one handshake shared among all concurrent callers.
func (m *sessionManager) ensure(ctx context.Context) (*clientSession, error) {
	m.mu.Lock()
	if m.current.live(m.now()) {
		cur := m.current
		m.mu.Unlock()
		return cur, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do("handshake", func() (interface{}, error) {
		// A flight that completed between the check above and joining the
		// group may already have installed a fresh session.
		m.mu.Lock()
		if m.current.live(m.now()) {
			cur := m.current
			m.mu.Unlock()
			return cur, nil
		}
		m.mu.Unlock()

		sess, err := m.handshake(ctx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.current = sess
		m.mu.Unlock()
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*clientSession), nil
}

// reset discards the cached session and forgets any in-flight handshake,
// forcing the next ensure to negotiate fresh keys. Called after a 401 or a
// response decrypt failure.
func (m *sessionManager) reset() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	m.group.Forget("handshake")
}
