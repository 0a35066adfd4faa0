package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"tradegate/internal/auth/models"
	"tradegate/pkg/platform/sentinel"
)

type SessionSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryTokenStore
	sess  *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryTokenStore()
	s.sess = New(s.store)
}

func (s *SessionSuite) testCreds() *models.Credentials {
	return &models.Credentials{
		Token:    "tok-opaque",
		User:     models.User{ID: 7, Name: "Jane Doe", Email: "jane@example.com", UserType: "U", CountryCode: "DOHA"},
		IssuedAt: time.Now(),
	}
}

func signedToken(s *SessionSuite, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	s.Require().NoError(err)
	return signed
}

func (s *SessionSuite) TestStartsLoggedOut() {
	s.Equal(models.StateLoggedOut, s.sess.State())
	s.False(s.sess.Authenticated())
	s.Nil(s.sess.Current())
	s.Empty(s.sess.Token())
}

func (s *SessionSuite) TestEstablishPersistsAndTransitions() {
	s.Require().NoError(s.sess.Establish(s.ctx, s.testCreds()))

	s.Equal(models.StateLoggedIn, s.sess.State())
	s.Equal("tok-opaque", s.sess.Token())

	persisted, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("tok-opaque", persisted.Token)
	s.Equal(int64(7), persisted.User.ID)
}

func (s *SessionSuite) TestClearIsIdempotent() {
	s.Require().NoError(s.sess.Establish(s.ctx, s.testCreds()))
	s.Require().NoError(s.sess.Clear(s.ctx))
	s.Require().NoError(s.sess.Clear(s.ctx))

	s.Equal(models.StateLoggedOut, s.sess.State())
	_, err := s.store.Load(s.ctx)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *SessionSuite) TestRestoreRehydratesFromStore() {
	s.Require().NoError(s.store.Save(s.ctx, s.testCreds()))

	fresh := New(s.store)
	s.Require().NoError(fresh.Restore(s.ctx))
	s.True(fresh.Authenticated())
	s.Equal("jane@example.com", fresh.Current().User.Email)
}

func (s *SessionSuite) TestRestoreDiscardsExpiredJWT() {
	creds := s.testCreds()
	creds.Token = signedToken(s, time.Now().Add(-time.Hour))
	s.Require().NoError(s.store.Save(s.ctx, creds))

	fresh := New(s.store)
	s.Require().NoError(fresh.Restore(s.ctx))
	s.False(fresh.Authenticated())

	_, err := s.store.Load(s.ctx)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *SessionSuite) TestRestoreKeepsUnexpiredJWT() {
	creds := s.testCreds()
	creds.Token = signedToken(s, time.Now().Add(time.Hour))
	s.Require().NoError(s.store.Save(s.ctx, creds))

	fresh := New(s.store)
	s.Require().NoError(fresh.Restore(s.ctx))
	s.True(fresh.Authenticated())
}

func (s *SessionSuite) TestRestoreKeepsOpaqueToken() {
	s.Require().NoError(s.store.Save(s.ctx, s.testCreds()))

	fresh := New(s.store, WithNow(func() time.Time { return time.Now().Add(100 * 365 * 24 * time.Hour) }))
	s.Require().NoError(fresh.Restore(s.ctx))
	s.True(fresh.Authenticated())
}

func (s *SessionSuite) TestRestoreNothingPersisted() {
	err := s.sess.Restore(s.ctx)
	s.True(errors.Is(err, sentinel.ErrNotFound))
	s.False(s.sess.Authenticated())
}

func (s *SessionSuite) TestBeginAuthenticationObservable() {
	s.sess.BeginAuthentication()
	s.Equal(models.StateAuthenticating, s.sess.State())
}

func (s *SessionSuite) TestCurrentReturnsCopy() {
	s.Require().NoError(s.sess.Establish(s.ctx, s.testCreds()))
	c := s.sess.Current()
	c.Token = "mutated"
	s.Equal("tok-opaque", s.sess.Token())
}

func (s *SessionSuite) TestRedisTokenStoreTTL() {
	store := NewRedisTokenStore(nil, "sess-1", 7*24*time.Hour)
	s.Equal(7*24*time.Hour, store.ttl)

	store = NewRedisTokenStore(nil, "sess-1", 0)
	s.Equal(defaultCredentialsTTL, store.ttl)
}
