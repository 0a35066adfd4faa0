// Package session owns the authenticated state of one client session: the
// bearer token, the user it belongs to, and the login lifecycle. It is an
// explicitly constructed object handed to collaborators, never ambient
// process-wide state.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tradegate/internal/auth/models"
)

// Session holds the current authentication state. All transitions go through
// Establish/Clear so collaborators can never observe a partial state: the
// session is logged out, authenticating, or logged in.
type Session struct {
	mu      sync.RWMutex
	state   models.State
	current *models.Credentials

	store  TokenStore
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the clock (for testing expiry decisions).
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a logged-out session backed by the given store.
func New(store TokenStore, opts ...Option) *Session {
	s := &Session{
		state:  models.StateLoggedOut,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads persisted credentials, if any, and re-establishes the session.
// A persisted token whose embedded expiry has passed is discarded rather than
// replayed. Tokens that are not parseable as JWTs are treated as opaque and
// kept; the server remains the authority on their validity.
func (s *Session) Restore(ctx context.Context) error {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	if expired(creds.Token, s.now()) {
		s.logger.InfoContext(ctx, "discarding expired persisted token")
		return s.Clear(ctx)
	}

	s.mu.Lock()
	s.current = creds
	s.state = models.StateLoggedIn
	s.mu.Unlock()
	return nil
}

// BeginAuthentication marks the session as mid-handshake. It does not touch
// persisted state; a failed handshake leaves the previous logged-out state.
func (s *Session) BeginAuthentication() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = models.StateAuthenticating
}

// Establish records a successful login and persists it.
func (s *Session) Establish(ctx context.Context, creds *models.Credentials) error {
	if err := s.store.Save(ctx, creds); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = creds
	s.state = models.StateLoggedIn
	s.mu.Unlock()
	return nil
}

// Clear logs the session out and removes persisted credentials. Idempotent.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.state = models.StateLoggedOut
	s.mu.Unlock()
	return s.store.Clear(ctx)
}

// State returns the current lifecycle state.
func (s *Session) State() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	return s.State() == models.StateLoggedIn
}

// Current returns a copy of the logged-in credentials, or nil when logged out.
func (s *Session) Current() *models.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Token returns the bearer token, or empty when logged out.
func (s *Session) Token() string {
	if c := s.Current(); c != nil {
		return c.Token
	}
	return ""
}

// expired inspects the token's exp claim without verifying the signature; the
// server owns verification, this only avoids replaying a token known dead.
func expired(token string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false // opaque token, defer to the server
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
