// Package client talks to the marketplace user directory.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	dErrors "tradegate/pkg/domain-errors"
)

const defaultTimeout = 10 * time.Second

// HTTPClient is the user-directory API client.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New constructs a client against the given API base URL.
func New(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type checkEmailResponse struct {
	Success   bool `json:"success"`
	Available bool `json:"available"`
}

// CheckEmail reports whether the address is free to register. The address
// travels as a query parameter; the endpoint takes no body.
func (c *HTTPClient) CheckEmail(ctx context.Context, email string) (bool, error) {
	endpoint := c.baseURL + "/check-email?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "building email check request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeNetwork, "email check failed")
	}
	defer resp.Body.Close()

	var body checkEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeNetwork, "decoding email check response")
	}
	if !body.Success {
		return false, dErrors.New(dErrors.CodeNetwork, "email check rejected")
	}
	return body.Available, nil
}
