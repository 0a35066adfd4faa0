package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/redis/go-redis/v9"

	"tradegate/internal/payment/models"
	"tradegate/pkg/platform/sentinel"
)

const (
	pendingKeyPrefix = "payment:pending:"
	activeKeyPrefix  = "payment:active:"
)

// defaultIntentTTL bounds how long an abandoned intent survives in Redis
// when the reconciler never comes back to clear it. Kept slightly above the
// payment timeout so an intent is expirable before it vanishes.
const defaultIntentTTL = 20 * time.Minute

// intentTTLPadding keeps a stored intent alive past the payment timeout.
// If the key vanished exactly at the timeout, Resume would report nothing
// stored instead of an expired payment.
const intentTTLPadding = 5 * time.Minute

// intentJSON is the stored representation. Money is flattened to minor units
// plus currency code so the amount round-trips exactly.
type intentJSON struct {
	ReferenceNumber      string `json:"reference_number"`
	AmountMinor          int64  `json:"amount_minor"`
	Currency             string `json:"currency"`
	GatewayName          string `json:"gateway_name"`
	GatewayTransactionID string `json:"gateway_transaction_id"`
	CustomerName         string `json:"customer_name"`
	CustomerEmail        string `json:"customer_email"`
	Status               string `json:"status"`
	CreatedAt            int64  `json:"created_at"` // Unix nano
}

func encodeIntent(intent *models.Intent) ([]byte, error) {
	doc := intentJSON{
		ReferenceNumber:      intent.ReferenceNumber,
		GatewayName:          intent.GatewayName,
		GatewayTransactionID: intent.GatewayTransactionID,
		CustomerName:         intent.CustomerName,
		CustomerEmail:        intent.CustomerEmail,
		Status:               string(intent.Status),
		CreatedAt:            intent.CreatedAt.UnixNano(),
	}
	if intent.Amount != nil {
		doc.AmountMinor = intent.Amount.Amount()
		doc.Currency = intent.Amount.Currency().Code
	}
	return json.Marshal(doc)
}

func decodeIntent(raw []byte) (*models.Intent, error) {
	var doc intentJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal intent: %w", err)
	}
	intent := &models.Intent{
		ReferenceNumber:      doc.ReferenceNumber,
		GatewayName:          doc.GatewayName,
		GatewayTransactionID: doc.GatewayTransactionID,
		CustomerName:         doc.CustomerName,
		CustomerEmail:        doc.CustomerEmail,
		Status:               models.Status(doc.Status),
		CreatedAt:            time.Unix(0, doc.CreatedAt),
	}
	if doc.Currency != "" {
		intent.Amount = money.New(doc.AmountMinor, doc.Currency)
	}
	return intent, nil
}

// RedisIntentStore persists the intent slots in Redis, keyed per browser
// session so parallel sessions keep independent payments.
type RedisIntentStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

// NewRedisIntentStore builds a store scoped to one session key. The Redis
// TTL is the payment timeout plus padding, never the timeout itself, so an
// intent is still loadable at the moment it becomes expirable.
func NewRedisIntentStore(client *redis.Client, sessionID string, timeout time.Duration) *RedisIntentStore {
	ttl := defaultIntentTTL
	if timeout > 0 {
		ttl = timeout + intentTTLPadding
	}
	return &RedisIntentStore{client: client, sessionID: sessionID, ttl: ttl}
}

func (s *RedisIntentStore) save(ctx context.Context, key string, intent *models.Intent) error {
	payload, err := encodeIntent(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save intent: %w", err)
	}
	return nil
}

func (s *RedisIntentStore) load(ctx context.Context, key string) (*models.Intent, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("no stored intent: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load intent: %w", err)
	}
	return decodeIntent(raw)
}

func (s *RedisIntentStore) SavePending(ctx context.Context, intent *models.Intent) error {
	return s.save(ctx, pendingKeyPrefix+s.sessionID, intent)
}

func (s *RedisIntentStore) LoadPending(ctx context.Context) (*models.Intent, error) {
	return s.load(ctx, pendingKeyPrefix+s.sessionID)
}

func (s *RedisIntentStore) SaveActive(ctx context.Context, intent *models.Intent) error {
	return s.save(ctx, activeKeyPrefix+s.sessionID, intent)
}

func (s *RedisIntentStore) LoadActive(ctx context.Context) (*models.Intent, error) {
	return s.load(ctx, activeKeyPrefix+s.sessionID)
}

func (s *RedisIntentStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, pendingKeyPrefix+s.sessionID, activeKeyPrefix+s.sessionID).Err(); err != nil {
		return fmt.Errorf("clear intent: %w", err)
	}
	return nil
}
