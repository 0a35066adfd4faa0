package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"tradegate/internal/auth/models"
	dErrors "tradegate/pkg/domain-errors"
)

type ClientSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) TestRequestNonce() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodGet, r.Method)
		s.Equal("/session/random-key", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"randomKey":"n0nce42"}`))
	}))
	defer srv.Close()

	nonce, err := New(srv.URL).RequestNonce(context.Background())
	s.Require().NoError(err)
	s.Equal("n0nce42", nonce)
}

func (s *ClientSuite) TestRequestNonceUnavailable() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).RequestNonce(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeChallengeUnavailable))
}

func (s *ClientSuite) TestRequestNonceTransportFailure() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := New(srv.URL).RequestNonce(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNetwork))
}

func (s *ClientSuite) TestSubmitLoginSuccess() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"message": "ok",
			"data": {
				"token": "tok-abc",
				"user": {"id": 7, "name": "Jane Doe", "emailId": "jane@example.com", "userType": "U", "countryCode": "DOHA"}
			}
		}`))
	}))
	defer srv.Close()

	creds, err := New(srv.URL).SubmitLogin(context.Background(), models.LoginSubmission{
		Email:       "jane@example.com",
		Credential:  "94a67f990c177c66a033b3eb3e8cd7ff8aa42d39",
		CountryCode: "DOHA",
	})
	s.Require().NoError(err)
	s.Equal("tok-abc", creds.Token)
	s.Equal(int64(7), creds.User.ID)
	s.False(creds.User.Admin())
}

func (s *ClientSuite) TestSubmitLoginRejected() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitLogin(context.Background(), models.LoginSubmission{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	s.Equal("Invalid credentials", err.Error())
}
