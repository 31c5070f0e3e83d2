// Package session holds the authenticated session for one process
// lifetime. It is constructed once at startup, handed to the gateway
// and coordinator explicitly, and torn down on logout or when the
// remote authority reports the token invalid.
package session

import (
	"log/slog"
	"sync"

	"github.com/jiralite/jl/internal/models"
)

// Session is the lifecycle-scoped authentication state. It satisfies
// the gateway's CredentialSource.
type Session struct {
	mu           sync.RWMutex
	token        string
	user         models.User
	hasUser      bool
	invalidated  bool
	onInvalidate []func()
}

// New returns a session carrying the given token. An empty token means
// unauthenticated.
func New(token string) *Session {
	return &Session{token: token}
}

// Token returns the bearer token, or "" once the session is torn down.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.invalidated {
		return ""
	}
	return s.token
}

// SetToken installs a fresh token, reviving a torn-down session.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.invalidated = false
}

// Active reports whether the session currently carries a token.
func (s *Session) Active() bool {
	return s.Token() != ""
}

// SetUser records the authenticated user.
func (s *Session) SetUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.hasUser = true
}

// User returns the authenticated user, if known.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.hasUser
}

// OnInvalidate registers a teardown hook. Hooks run at most once, in
// registration order, when the session is invalidated.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = append(s.onInvalidate, fn)
}

// Invalidate tears the session down: the token is discarded and every
// registered hook runs. Subsequent calls are no-ops, so a burst of 401
// responses from concurrent in-flight requests tears down once.
func (s *Session) Invalidate() {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return
	}
	s.invalidated = true
	s.token = ""
	s.hasUser = false
	hooks := make([]func(), len(s.onInvalidate))
	copy(hooks, s.onInvalidate)
	s.mu.Unlock()

	slog.Info("session invalidated")
	for _, fn := range hooks {
		fn()
	}
}
