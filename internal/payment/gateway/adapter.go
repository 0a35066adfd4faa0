package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"tradegate/internal/payment/metrics"
	"tradegate/internal/payment/models"
	"tradegate/internal/payment/store"
	dErrors "tradegate/pkg/domain-errors"
)

// Navigator performs the full-page form submission that hands the user to
// the gateway's domain. Once Navigate returns nil, control has left the
// application; nothing after it is guaranteed to run for this flow.
type Navigator interface {
	Navigate(ctx context.Context, form *RedirectForm) error
}

// PageNavigator defers the actual submission to the intermediate gateway
// page: the browser fetches the handoff payload and performs the POST
// itself, so server-side navigation is a no-op.
type PageNavigator struct{}

func (PageNavigator) Navigate(context.Context, *RedirectForm) error { return nil }

// Adapter turns a payment intent into a gateway handoff: build the redirect
// form for the intent's gateway, persist the intent so the reconciler can
// pick it up after the round trip, then navigate.
type Adapter struct {
	registry   *Registry
	store      store.IntentStore
	navigator  Navigator
	returnBase string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// NewAdapter constructs the adapter. returnBase is the externally reachable
// base URL the gateway redirects back to.
func NewAdapter(registry *Registry, intents store.IntentStore, navigator Navigator, returnBase string, opts ...Option) *Adapter {
	a := &Adapter{
		registry:   registry,
		store:      intents,
		navigator:  navigator,
		returnBase: returnBase,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildRedirectForm is the pure half of the handoff: resolve the intent's
// gateway profile and produce the POST the hosted page expects. Unknown
// gateway names resolve to the default profile.
func (a *Adapter) BuildRedirectForm(intent *models.Intent) *RedirectForm {
	profile := a.registry.Resolve(intent.GatewayName)
	currency := ""
	if intent.Amount != nil {
		currency = intent.Amount.Currency().Code
	}
	customer := Customer{Name: intent.CustomerName, Email: intent.CustomerEmail}
	params := BuildRedirectParams(profile, intent.ReferenceNumber, intent.AmountParam(), currency, a.returnBase, customer)
	return &RedirectForm{
		URL:    profile.PaymentURL,
		Method: http.MethodPost,
		Fields: params,
	}
}

// Redirect persists the intent in both slots and then navigates. The writes
// come first: once navigation succeeds the execution context this flow runs
// in may be gone, so the stored intent is the only record that a payment is
// in flight.
func (a *Adapter) Redirect(ctx context.Context, intent *models.Intent) (*RedirectForm, error) {
	form := a.BuildRedirectForm(intent)

	if err := a.store.SavePending(ctx, intent); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persisting pending payment")
	}
	if err := a.store.SaveActive(ctx, intent); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persisting active payment")
	}

	a.logger.InfoContext(ctx, "handing off to payment gateway",
		"reference", intent.ReferenceNumber,
		"gateway", a.registry.Resolve(intent.GatewayName).Name,
	)
	a.metrics.IncrementPaymentsInitiated(a.registry.Resolve(intent.GatewayName).Name)

	if err := a.navigator.Navigate(ctx, form); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeGatewayInitiation, "gateway navigation failed")
	}
	return form, nil
}
