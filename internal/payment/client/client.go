// Package client talks to the marketplace API for payment initiation,
// status checks, and callback recording.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"tradegate/internal/payment/models"
	dErrors "tradegate/pkg/domain-errors"
)

const defaultTimeout = 15 * time.Second

// HTTPClient is the marketplace payments API client.
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

type intentPayload struct {
	PaymentRefNo  string  `json:"paymentRefNo"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Gateway       string  `json:"gateway"`
	TransactionID string  `json:"transactionId"`
	Status        string  `json:"status"`
}

type initiateResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    *intentPayload `json:"data"`
}

func (p *intentPayload) toIntent() *models.Intent {
	status := models.StatusPending
	if p.Status != "" {
		status = models.Canonicalize(p.Status)
	}
	return &models.Intent{
		ReferenceNumber:      p.PaymentRefNo,
		Amount:               money.NewFromFloat(p.Amount, p.Currency),
		GatewayName:          p.Gateway,
		GatewayTransactionID: p.TransactionID,
		Status:               status,
		CreatedAt:            time.Now(),
	}
}

// InitiateRegistration submits the registration form and returns the payment
// intent the server issued for it. The form travels urlencoded with the
// legacy field names; the country rides in a header.
func (c *HTTPClient) InitiateRegistration(ctx context.Context, form url.Values, countryCode string) (*models.Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/register-with-payment", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "building registration request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Country-Code", countryCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNetwork, "registration request failed")
	}
	defer resp.Body.Close()

	var body initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNetwork, "decoding registration response")
	}
	if !body.Success || body.Data == nil || body.Data.PaymentRefNo == "" {
		msg := body.Message
		if msg == "" {
			msg = "payment could not be started"
		}
		return nil, dErrors.New(dErrors.CodeGatewayInitiation, msg)
	}
	return body.Data.toIntent(), nil
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	} `json:"data"`
}

// CheckStatus polls the server-side view of a payment. The raw status is
// returned untranslated so the caller owns canonicalization.
func (c *HTTPClient) CheckStatus(ctx context.Context, ref string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/payments/"+url.PathEscape(ref)+"/status", nil)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "building status request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeNetwork, "status request failed")
	}
	defer resp.Body.Close()

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeNetwork, "decoding status response")
	}
	if !body.Success {
		return "", "", dErrors.New(dErrors.CodeNetwork, fmt.Sprintf("status check rejected for %s", ref))
	}
	return body.Data.Status, body.Data.TransactionID, nil
}

type callbackRequest struct {
	GatewayResponse string `json:"gatewayResponse"`
	Signature       string `json:"signature"`
}

// ProcessCallback records the raw gateway response against the payment on
// the server. Callers treat failure as advisory; the canonical outcome is
// already decided locally by the time this runs.
func (c *HTTPClient) ProcessCallback(ctx context.Context, ref, rawResponse, signature string) error {
	payload, err := json.Marshal(callbackRequest{GatewayResponse: rawResponse, Signature: signature})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encoding callback payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/payments/"+url.PathEscape(ref)+"/response", bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "building callback request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeNetwork, "callback request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return dErrors.New(dErrors.CodeNetwork,
			fmt.Sprintf("callback recording returned %d for %s", resp.StatusCode, ref))
	}
	return nil
}
