// Package tracer is a small tracing abstraction over OpenTelemetry. The
// services depend on this interface, not on the OTel APIs, so tests run with
// a no-op tracer and production wires the OTel adapter.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span is an active trace span. End must be called exactly once, typically
// via defer; a non-nil error marks the span failed.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a short SHA-256 digest of an address so traces can be
// correlated per account without carrying the address itself.
func HashEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanLogin           = "auth.login"
	SpanPaymentCallback = "payment.callback"
	SpanPaymentPoll     = "payment.poll"
	SpanPaymentResume   = "payment.resume"
)

// Attribute keys.
const (
	AttrCountryCode = "country_code"
	AttrEmailHash   = "email_hash"
	AttrOutcome     = "outcome"
	AttrGateway     = "gateway"
	AttrReference   = "payment_reference"
	AttrStatus      = "status"
)

// Event names.
const (
	EventCallbackRecorded = "callback.recorded"
	EventIntentExpired    = "intent.expired"
)
