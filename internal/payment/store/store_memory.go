package store

import (
	"context"
	"fmt"
	"sync"

	"tradegate/internal/payment/models"
	"tradegate/pkg/platform/sentinel"
)

// InMemoryIntentStore is the process-local store used in tests and
// single-instance deployments.
type InMemoryIntentStore struct {
	mu      sync.RWMutex
	pending *models.Intent
	active  *models.Intent
}

func NewInMemoryIntentStore() *InMemoryIntentStore {
	return &InMemoryIntentStore{}
}

func (s *InMemoryIntentStore) SavePending(_ context.Context, intent *models.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *intent
	s.pending = &cp
	return nil
}

func (s *InMemoryIntentStore) LoadPending(_ context.Context) (*models.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending == nil {
		return nil, fmt.Errorf("pending intent: %w", sentinel.ErrNotFound)
	}
	cp := *s.pending
	return &cp, nil
}

func (s *InMemoryIntentStore) SaveActive(_ context.Context, intent *models.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *intent
	s.active = &cp
	return nil
}

func (s *InMemoryIntentStore) LoadActive(_ context.Context) (*models.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil, fmt.Errorf("active intent: %w", sentinel.ErrNotFound)
	}
	cp := *s.active
	return &cp, nil
}

func (s *InMemoryIntentStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.active = nil
	return nil
}
