// Package store persists the in-flight payment intent across the handoff to
// the external gateway. Two slots exist per session: the pending slot read
// by the intermediate gateway page, and the active slot the reconciler reads
// when it resumes after the round trip.
package store

import (
	"context"

	"tradegate/internal/payment/models"
)

// IntentStore holds at most one payment intent per slot. Implementations
// return sentinel.ErrNotFound (wrapped) when a slot is empty. Writes are
// last-writer-wins: the adapter writes, the reconciler reads and clears.
type IntentStore interface {
	SavePending(ctx context.Context, intent *models.Intent) error
	LoadPending(ctx context.Context) (*models.Intent, error)
	SaveActive(ctx context.Context, intent *models.Intent) error
	LoadActive(ctx context.Context) (*models.Intent, error)
	Clear(ctx context.Context) error
}
