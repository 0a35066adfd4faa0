package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for login handshake operations.
type Metrics struct {
	LoginsSucceeded  prometheus.Counter
	LoginsFailed     *prometheus.CounterVec
	NonceRequests    prometheus.Counter
	LoginDurationSec prometheus.Histogram
}

// New registers and returns auth metrics collectors.
func New() *Metrics {
	return &Metrics{
		LoginsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_logins_succeeded_total",
			Help: "Total number of successful logins",
		}),
		LoginsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tradegate_logins_failed_total",
			Help: "Total number of failed logins, labeled by reason",
		}, []string{"reason"}),
		NonceRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_nonce_requests_total",
			Help: "Total number of login nonces requested",
		}),
		LoginDurationSec: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradegate_login_duration_seconds",
			Help:    "End-to-end login handshake duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementLoginsSucceeded() {
	if m != nil {
		m.LoginsSucceeded.Inc()
	}
}

func (m *Metrics) IncrementLoginsFailed(reason string) {
	if m != nil {
		m.LoginsFailed.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementNonceRequests() {
	if m != nil {
		m.NonceRequests.Inc()
	}
}

func (m *Metrics) ObserveLoginDuration(seconds float64) {
	if m != nil {
		m.LoginDurationSec.Observe(seconds)
	}
}
