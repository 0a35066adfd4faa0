package session

import (
	"context"
	"fmt"
	"sync"

	"tradegate/internal/auth/models"
	"tradegate/pkg/platform/sentinel"
)

// InMemoryTokenStore keeps credentials in memory for tests/dev.
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	creds *models.Credentials
}

// NewInMemoryTokenStore constructs an empty in-memory token store.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{}
}

func (s *InMemoryTokenStore) Save(_ context.Context, creds *models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *creds
	s.creds = &cp
	return nil
}

func (s *InMemoryTokenStore) Load(_ context.Context) (*models.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return nil, fmt.Errorf("no persisted credentials: %w", sentinel.ErrNotFound)
	}
	cp := *s.creds
	return &cp, nil
}

func (s *InMemoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	return nil
}
