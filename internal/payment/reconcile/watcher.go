package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"tradegate/internal/payment/models"
	"tradegate/internal/platform/tracer"
)

// errNotTerminal keeps the poll loop going between attempts.
var errNotTerminal = errors.New("payment not yet terminal")

// Watcher owns one polling goroutine. It ends on the first terminal status,
// on Stop, or on the wall-clock deadline, whichever comes first; the
// deadline marks the intent expired. At most one outcome is ever delivered.
type Watcher struct {
	outcome chan models.Outcome
	cancel  context.CancelFunc
	done    chan struct{}
}

// Outcome delivers the terminal outcome. The channel is closed without a
// value when the watcher is stopped before resolution.
func (w *Watcher) Outcome() <-chan models.Outcome {
	return w.outcome
}

// Stop cancels polling. Safe to call more than once and after resolution.
func (w *Watcher) Stop() {
	w.cancel()
	<-w.done
}

func (r *Reconciler) watch(ctx context.Context, intent *models.Intent) *Watcher {
	deadline := intent.CreatedAt.Add(r.timeout)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)

	w := &Watcher{
		outcome: make(chan models.Outcome, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer cancel()
		defer close(w.done)
		defer close(w.outcome)

		pollCtx, span := r.tracer.Start(pollCtx, tracer.SpanPaymentPoll,
			tracer.String(tracer.AttrReference, intent.ReferenceNumber),
			tracer.String(tracer.AttrGateway, intent.GatewayName),
		)

		start := r.now()
		var status models.Status
		var txnID string

		err := retry.Do(pollCtx, retry.NewConstant(r.pollInterval), func(ctx context.Context) error {
			raw, txn, err := r.client.CheckStatus(ctx, intent.ReferenceNumber)
			if err != nil {
				// Transient upstream trouble keeps the poll alive; the
				// deadline bounds how long that can go on.
				return retry.RetryableError(err)
			}
			candidate := models.Canonicalize(raw)
			if !candidate.Terminal() {
				return retry.RetryableError(errNotTerminal)
			}
			status, txnID = candidate, txn
			return nil
		})

		switch {
		case err == nil:
			w.outcome <- r.finalize(context.WithoutCancel(pollCtx), intent, status, txnID)
			r.metrics.ObservePollDuration(time.Since(start).Seconds())
			span.SetAttributes(tracer.String(tracer.AttrStatus, string(status)))
			span.End(nil)
		case errors.Is(pollCtx.Err(), context.DeadlineExceeded):
			w.outcome <- r.expire(context.WithoutCancel(pollCtx), intent)
			span.AddEvent(tracer.EventIntentExpired)
			span.End(nil)
		default:
			// Stopped. Teardown leaves the stored intent alone so a later
			// resume can still pick it up.
			span.End(err)
		}
	}()

	return w
}
