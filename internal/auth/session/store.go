package session

import (
	"context"

	"tradegate/internal/auth/models"
)

// TokenStore persists the authenticated credentials across process restarts,
// standing in for the durable client storage the session survived in before.
//
// Error Contract:
// - Load returns sentinel.ErrNotFound (wrapped) when nothing is persisted.
// - Clear is a no-op when nothing is persisted.
// - Infrastructure failures are returned wrapped with context.
type TokenStore interface {
	Save(ctx context.Context, creds *models.Credentials) error
	Load(ctx context.Context) (*models.Credentials, error)
	Clear(ctx context.Context) error
}
