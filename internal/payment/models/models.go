// Package models defines payment intents, gateway callbacks, and the
// canonical status vocabulary shared by every gateway integration.
package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	dErrors "tradegate/pkg/domain-errors"
)

// Status is the canonical lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
	StatusUnknown   Status = "UNKNOWN"
)

// statusAliases folds the vocabulary each gateway reports into the canonical
// set. Unmapped values pass through uppercased so nothing is silently lost.
var statusAliases = map[string]Status{
	"CAPTURED":  StatusSuccess,
	"SUCCESS":   StatusSuccess,
	"APPROVED":  StatusSuccess,
	"COMPLETED": StatusSuccess,
	"FAILED":    StatusFailed,
	"DECLINED":  StatusFailed,
	"ERROR":     StatusFailed,
	"CANCELLED": StatusCancelled,
	"PENDING":   StatusPending,
}

// Canonicalize maps a raw gateway status onto the canonical vocabulary. An
// absent status is reported as UNKNOWN rather than an empty string.
func Canonicalize(raw string) Status {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return StatusUnknown
	}
	if status, ok := statusAliases[upper]; ok {
		return status
	}
	return Status(upper)
}

// Terminal reports whether the status ends the payment lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Intent is one in-flight payment: the reference the gateway round-trips,
// the amount, and where the lifecycle currently stands.
type Intent struct {
	ReferenceNumber      string
	Amount               *money.Money
	GatewayName          string
	GatewayTransactionID string
	CustomerName         string
	CustomerEmail        string
	Status               Status
	CreatedAt            time.Time
}

// Transition advances the intent's status. Once a terminal status is reached
// the intent is frozen; re-applying the same terminal status is tolerated so
// duplicate gateway callbacks stay harmless.
func (i *Intent) Transition(next Status) error {
	if i.Status.Terminal() {
		if next == i.Status {
			return nil
		}
		return dErrors.New(dErrors.CodeConflict,
			"payment "+i.ReferenceNumber+" already "+string(i.Status))
	}
	i.Status = next
	return nil
}

// AmountParam renders the amount the way gateways expect it: major units
// with the currency's full fraction digits.
func (i *Intent) AmountParam() string {
	if i.Amount == nil {
		return "0.00"
	}
	digits := i.Amount.Currency().Fraction
	return strconv.FormatFloat(i.Amount.AsMajorUnits(), 'f', digits, 64)
}

// Callback is a normalized gateway response, extracted from whichever
// parameter vocabulary the gateway used.
type Callback struct {
	ReferenceNumber string
	RawStatus       string
	TransactionID   string
	ErrorCode       string
	ErrorMessage    string
}

// Status returns the canonical reading of the callback's raw status.
func (c *Callback) Status() Status {
	return Canonicalize(c.RawStatus)
}

// Outcome is the terminal result delivered to lifecycle subscribers.
type Outcome struct {
	ReferenceNumber string
	Status          Status
	TransactionID   string
	ErrorCode       string
	ErrorMessage    string
}
