// Package service orchestrates the challenge-response login handshake: fetch
// a fresh nonce, derive the wire credential, submit it, and establish the
// session on success. Expected authentication failures are returned as typed
// results, not errors.
package service

import (
	"context"
	"log/slog"
	"time"

	"tradegate/internal/auth/metrics"
	"tradegate/internal/auth/models"
	"tradegate/internal/auth/session"
	"tradegate/internal/credential"
	"tradegate/internal/platform/tracer"
	dErrors "tradegate/pkg/domain-errors"
)

// ChallengeClient is the upstream authentication API surface the service
// depends on.
type ChallengeClient interface {
	RequestNonce(ctx context.Context) (string, error)
	SubmitLogin(ctx context.Context, sub models.LoginSubmission) (*models.Credentials, error)
}

// Service drives login and logout against an injected session.
type Service struct {
	client  ChallengeClient
	session *session.Session
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer attaches a tracer for the handshake spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New constructs the login service.
func New(client ChallengeClient, sess *session.Session, opts ...Option) *Service {
	s := &Service{
		client:  client,
		session: sess,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login performs one complete handshake. A fresh nonce is fetched for every
// attempt; the previous nonce is never reused even when retrying after a
// failure, since the server consumes a nonce per verification. The plaintext
// password never leaves this function: only the derived digest is submitted.
//
// Expected outcomes (rejected credentials, unreachable server) come back in
// the AuthResult; the error return is reserved for caller mistakes such as an
// empty password.
func (s *Service) Login(ctx context.Context, email, password, countryCode string) (*models.AuthResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanLogin,
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(email)),
		tracer.String(tracer.AttrCountryCode, countryCode),
	)
	s.session.BeginAuthentication()

	result, err := s.login(ctx, email, password, countryCode)
	if err != nil {
		// Leave no ambiguous state behind on caller error.
		_ = s.session.Clear(ctx)
		span.End(err)
		return nil, err
	}
	if result.Status != models.StatusAuthenticated {
		_ = s.session.Clear(ctx)
	}
	s.metrics.ObserveLoginDuration(time.Since(start).Seconds())
	span.SetAttributes(tracer.String(tracer.AttrOutcome, string(result.Status)))
	span.End(nil)
	return result, nil
}

func (s *Service) login(ctx context.Context, email, password, countryCode string) (*models.AuthResult, error) {
	nonce, err := s.client.RequestNonce(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "nonce request failed", "error", err)
		s.metrics.IncrementLoginsFailed(string(dErrors.CodeOf(err)))
		return &models.AuthResult{
			Status:  models.StatusNetworkError,
			Message: "authentication service unavailable",
		}, nil
	}
	s.metrics.IncrementNonceRequests()

	digest, err := credential.Hash(password, nonce)
	if err != nil {
		return nil, err
	}

	creds, err := s.client.SubmitLogin(ctx, models.LoginSubmission{
		Email:       email,
		Credential:  digest,
		CountryCode: countryCode,
	})
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeInvalidCredentials:
			s.logger.InfoContext(ctx, "login rejected", "email", email)
			s.metrics.IncrementLoginsFailed("invalid_credentials")
			return &models.AuthResult{
				Status:  models.StatusInvalidCredentials,
				Message: err.Error(),
			}, nil
		case dErrors.CodeNetwork:
			s.logger.WarnContext(ctx, "login submission failed", "error", err)
			s.metrics.IncrementLoginsFailed("network_error")
			return &models.AuthResult{
				Status:  models.StatusNetworkError,
				Message: "could not reach the authentication service",
			}, nil
		default:
			return nil, err
		}
	}

	if err := s.session.Establish(ctx, creds); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", creds.User.ID)
	s.metrics.IncrementLoginsSucceeded()
	return &models.AuthResult{
		Status:      models.StatusAuthenticated,
		Credentials: creds,
	}, nil
}

// Logout clears the session and its persisted credentials. Safe to call when
// already logged out.
func (s *Service) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}
