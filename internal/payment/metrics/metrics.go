package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the payment lifecycle.
type Metrics struct {
	PaymentsInitiated     *prometheus.CounterVec
	PaymentsFinalized     *prometheus.CounterVec
	PaymentsExpired       prometheus.Counter
	CallbackParseFailures prometheus.Counter
	PollDurationSec       prometheus.Histogram
}

// New registers and returns payment metrics collectors.
func New() *Metrics {
	return &Metrics{
		PaymentsInitiated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradegate_payments_initiated_total",
			Help: "Total number of gateway handoffs started, labeled by gateway",
		}, []string{"gateway"}),
		PaymentsFinalized: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradegate_payments_finalized_total",
			Help: "Total number of payments reaching a terminal status, labeled by status",
		}, []string{"status"}),
		PaymentsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_payments_expired_total",
			Help: "Total number of payments abandoned past the resolution deadline",
		}),
		CallbackParseFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_callback_parse_failures_total",
			Help: "Total number of gateway callbacks with no recognizable reference",
		}),
		PollDurationSec: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradegate_payment_poll_duration_seconds",
			Help:    "Time from resume to terminal status on the polling path",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
		}),
	}
}

func (m *Metrics) IncrementPaymentsInitiated(gateway string) {
	if m != nil {
		m.PaymentsInitiated.WithLabelValues(gateway).Inc()
	}
}

func (m *Metrics) IncrementPaymentsFinalized(status string) {
	if m != nil {
		m.PaymentsFinalized.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementPaymentsExpired() {
	if m != nil {
		m.PaymentsExpired.Inc()
	}
}

func (m *Metrics) IncrementCallbackParseFailures() {
	if m != nil {
		m.CallbackParseFailures.Inc()
	}
}

func (m *Metrics) ObservePollDuration(seconds float64) {
	if m != nil {
		m.PollDurationSec.Observe(seconds)
	}
}
