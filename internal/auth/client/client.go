// Package client talks to the upstream authentication API: the per-session
// nonce endpoint and the login endpoint. It owns the wire envelopes and
// translates transport failures into domain errors the service layer can
// classify.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tradegate/internal/auth/models"
	dErrors "tradegate/pkg/domain-errors"
)

const defaultTimeout = 10 * time.Second

// HTTPClient calls the authentication server over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// New creates a client rooted at baseURL, e.g. "https://api.example.com/api/v1".
func New(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nonceResponse is the envelope returned by the nonce endpoint.
type nonceResponse struct {
	Success   bool   `json:"success"`
	RandomKey string `json:"randomKey"`
}

// loginResponse is the envelope returned by the login endpoint.
type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	} `json:"data"`
}

// RequestNonce fetches a fresh one-time nonce for the current session. Every
// login attempt must call this; nonces are consumed by a single submission
// and are never generated client-side.
func (c *HTTPClient) RequestNonce(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/session/random-key", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to build nonce request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeNetwork, "nonce request failed")
	}
	defer resp.Body.Close()

	var body nonceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeChallengeUnavailable, "nonce response unreadable")
	}
	if !body.Success || body.RandomKey == "" {
		return "", dErrors.New(dErrors.CodeChallengeUnavailable, "server did not return a nonce")
	}
	return body.RandomKey, nil
}

// SubmitLogin posts the hashed credential. A server-side rejection comes back
// as CodeInvalidCredentials; transport failures as CodeNetwork.
func (c *HTTPClient) SubmitLogin(ctx context.Context, sub models.LoginSubmission) (*models.Credentials, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to marshal login request")
	}

	url := fmt.Sprintf("%s/auth/login", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNetwork, "login request failed")
	}
	defer resp.Body.Close()

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNetwork, "login response unreadable")
	}
	if !body.Success || body.Data.Token == "" {
		msg := body.Message
		if msg == "" {
			msg = "invalid email or password"
		}
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, msg)
	}

	return &models.Credentials{
		Token:    body.Data.Token,
		User:     body.Data.User,
		IssuedAt: time.Now(),
	}, nil
}
