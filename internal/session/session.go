// Package session implements the shared-secret login gate. A successful
// password check issues an opaque token with a TTL; handlers receive the
// session through the request context instead of any ambient state.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrBadPassword is returned when the supplied password does not match.
var ErrBadPassword = errors.New("session: wrong password")

// Session is one authenticated login.
type Session struct {
	// Token is the opaque bearer credential.
	Token string `json:"token"`

	// ID is a short identifier safe to put in logs and audit entries.
	ID string `json:"id"`

	ExpiresAt time.Time `json:"expires_at"`
}

// Manager issues and validates session tokens. Safe for concurrent use.
type Manager struct {
	password []byte
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

// NewManager creates a Manager for the given shared secret and token TTL.
func NewManager(password string, ttl time.Duration) *Manager {
	return &Manager{
		password: []byte(password),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// Login checks the password and, on success, issues a new session.
// The comparison is constant-time to avoid leaking prefix matches.
func (m *Manager) Login(password string) (Session, error) {
	if subtle.ConstantTimeCompare([]byte(password), m.password) != 1 {
		return Session{}, ErrBadPassword
	}

	s := Session{
		Token:     uuid.New().String(),
		ID:        uuid.New().String()[:8],
		ExpiresAt: m.now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s, nil
}

// Validate looks up a token and reports whether it is a live session.
// Expired sessions are dropped on sight.
func (m *Manager) Validate(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if m.now().After(s.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, false
	}
	return s, true
}

// Revoke invalidates a token. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Sweep removes expired sessions. Call it periodically from a background
// goroutine so abandoned logins do not accumulate.
func (m *Manager) Sweep() {
	now := m.now()
	m.mu.Lock()
	for token, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()
}

type contextKey struct{}

// NewContext returns ctx carrying the session.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session placed by the auth middleware.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
