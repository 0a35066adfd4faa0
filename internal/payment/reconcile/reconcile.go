// Package reconcile converges the two completion paths of a payment, the
// gateway callback and same-session status polling, onto one canonical
// terminal outcome, then clears the stored intent and notifies subscribers.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"tradegate/internal/payment/gateway"
	"tradegate/internal/payment/metrics"
	"tradegate/internal/payment/models"
	"tradegate/internal/payment/store"
	"tradegate/internal/platform/tracer"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/sentinel"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultTimeout      = 15 * time.Minute
)

// StatusClient is the upstream surface the reconciler needs: read the
// server-side payment status and record a raw gateway response.
type StatusClient interface {
	CheckStatus(ctx context.Context, ref string) (rawStatus, transactionID string, err error)
	ProcessCallback(ctx context.Context, ref, rawResponse, signature string) error
}

// Reconciler finalizes in-flight payments. Both paths end the same way:
// clear the stored intent, count the terminal status, notify subscribers.
type Reconciler struct {
	store        store.IntentStore
	client       StatusClient
	signatureKey string
	pollInterval time.Duration
	timeout      time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       tracer.Tracer
	now          func() time.Time

	mu      sync.Mutex
	subs    map[int]chan models.Outcome
	nextSub int
}

// Option configures the Reconciler.
type Option func(*Reconciler)

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// WithPollInterval overrides the polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// WithTimeout overrides the wall-clock budget for resolving a payment.
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithTracer attaches a tracer for the reconciliation spans.
func WithTracer(t tracer.Tracer) Option {
	return func(r *Reconciler) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithSignatureKey sets the key used to sign recorded callback payloads.
func WithSignatureKey(key string) Option {
	return func(r *Reconciler) {
		r.signatureKey = key
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// New constructs a reconciler over the given intent store and upstream.
func New(intents store.IntentStore, client StatusClient, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:        intents,
		client:       client,
		pollInterval: defaultPollInterval,
		timeout:      defaultTimeout,
		logger:       slog.Default(),
		tracer:       tracer.NewNoop(),
		now:          time.Now,
		subs:         make(map[int]chan models.Outcome),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers for terminal outcomes. The returned function
// unsubscribes; delivery is non-blocking, so a subscriber that stops
// draining misses outcomes rather than wedging the reconciler.
func (r *Reconciler) Subscribe() (<-chan models.Outcome, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	ch := make(chan models.Outcome, 4)
	r.subs[id] = ch
	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Reconciler) notify(outcome models.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- outcome:
		default:
		}
	}
}

// ResolveCallback finalizes a payment from a gateway return query. A query
// with no recognizable reference is unrecoverable and reported as a callback
// error; everything else converges on a terminal outcome, even when the
// stored intent has already gone.
func (r *Reconciler) ResolveCallback(ctx context.Context, query url.Values) (*models.Outcome, error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanPaymentCallback)
	cb := ParseCallback(query)
	if cb == nil {
		r.metrics.IncrementCallbackParseFailures()
		err := dErrors.New(dErrors.CodeGatewayCallback, "no recognizable payment reference in callback")
		span.End(err)
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrReference, cb.ReferenceNumber))

	status := cb.Status()
	if cb.RawStatus == "" {
		// A gateway that returns without saying anything did not capture.
		status = models.StatusFailed
	}

	intent, err := r.store.LoadActive(ctx)
	switch {
	case err == nil && intent.ReferenceNumber == cb.ReferenceNumber:
		if terr := intent.Transition(status); terr != nil {
			// Already terminal with a different status: the first
			// resolution wins, the late callback only echoes it.
			status = intent.Status
		}
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		werr := dErrors.Wrap(err, dErrors.CodeInternal, "loading active payment")
		span.End(werr)
		return nil, werr
	}

	// Record the raw response upstream. The outcome is already decided
	// locally; a recording failure is logged and otherwise ignored.
	raw := query.Encode()
	if err := r.client.ProcessCallback(ctx, cb.ReferenceNumber, raw, gateway.Signature(raw, r.signatureKey)); err != nil {
		r.logger.WarnContext(ctx, "recording gateway callback failed",
			"reference", cb.ReferenceNumber, "error", err)
	} else {
		span.AddEvent(tracer.EventCallbackRecorded)
	}

	if err := r.store.Clear(ctx); err != nil {
		r.logger.WarnContext(ctx, "clearing resolved payment failed",
			"reference", cb.ReferenceNumber, "error", err)
	}

	outcome := models.Outcome{
		ReferenceNumber: cb.ReferenceNumber,
		Status:          status,
		TransactionID:   cb.TransactionID,
		ErrorCode:       cb.ErrorCode,
		ErrorMessage:    cb.ErrorMessage,
	}
	r.metrics.IncrementPaymentsFinalized(string(outcome.Status))
	r.logger.InfoContext(ctx, "payment resolved via callback",
		"reference", outcome.ReferenceNumber, "status", outcome.Status)
	r.notify(outcome)
	span.SetAttributes(tracer.String(tracer.AttrStatus, string(outcome.Status)))
	span.End(nil)
	return &outcome, nil
}

// Resume picks up after a reload or return with no callback parameters. With
// no stored intent there is nothing to do. An intent past the resolution
// budget is expired immediately; otherwise polling starts and the returned
// watcher delivers the outcome.
func (r *Reconciler) Resume(ctx context.Context) (*Watcher, *models.Outcome, error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanPaymentResume)
	intent, err := r.store.LoadActive(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		span.End(nil)
		return nil, nil, nil
	}
	if err != nil {
		werr := dErrors.Wrap(err, dErrors.CodeInternal, "loading active payment")
		span.End(werr)
		return nil, nil, werr
	}
	span.SetAttributes(
		tracer.String(tracer.AttrReference, intent.ReferenceNumber),
		tracer.String(tracer.AttrGateway, intent.GatewayName),
	)

	if r.now().Sub(intent.CreatedAt) >= r.timeout {
		outcome := r.expire(ctx, intent)
		span.AddEvent(tracer.EventIntentExpired)
		span.End(nil)
		return nil, &outcome, nil
	}
	w := r.watch(ctx, intent)
	span.End(nil)
	return w, nil, nil
}

func (r *Reconciler) expire(ctx context.Context, intent *models.Intent) models.Outcome {
	_ = intent.Transition(models.StatusExpired)
	if err := r.store.Clear(ctx); err != nil {
		r.logger.WarnContext(ctx, "clearing expired payment failed",
			"reference", intent.ReferenceNumber, "error", err)
	}
	outcome := models.Outcome{
		ReferenceNumber: intent.ReferenceNumber,
		Status:          models.StatusExpired,
	}
	r.metrics.IncrementPaymentsExpired()
	r.metrics.IncrementPaymentsFinalized(string(models.StatusExpired))
	r.logger.InfoContext(ctx, "payment expired without resolution",
		"reference", intent.ReferenceNumber)
	r.notify(outcome)
	return outcome
}

func (r *Reconciler) finalize(ctx context.Context, intent *models.Intent, status models.Status, txnID string) models.Outcome {
	_ = intent.Transition(status)
	if err := r.store.Clear(ctx); err != nil {
		r.logger.WarnContext(ctx, "clearing resolved payment failed",
			"reference", intent.ReferenceNumber, "error", err)
	}
	outcome := models.Outcome{
		ReferenceNumber: intent.ReferenceNumber,
		Status:          status,
		TransactionID:   txnID,
	}
	r.metrics.IncrementPaymentsFinalized(string(status))
	r.logger.InfoContext(ctx, "payment resolved via polling",
		"reference", intent.ReferenceNumber, "status", status)
	r.notify(outcome)
	return outcome
}
