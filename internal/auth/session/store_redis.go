package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tradegate/internal/auth/models"
	"tradegate/pkg/platform/sentinel"
)

const credentialsKeyPrefix = "auth:credentials:"

// defaultCredentialsTTL is the fallback retention when no TTL is configured.
// The server invalidates tokens on its own schedule; this only bounds how
// long a dead token can linger client-side.
const defaultCredentialsTTL = 30 * 24 * time.Hour

// credentialsJSON is the serialized representation of persisted credentials.
// Explicit tags keep the stored format independent of field renames.
type credentialsJSON struct {
	Token       string `json:"token"`
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	UserType    string `json:"user_type"`
	CountryCode string `json:"country_code"`
	IssuedAt    int64  `json:"issued_at"` // Unix nano
}

// RedisTokenStore persists credentials in Redis, keyed per browser session so
// concurrent sessions do not clobber each other.
type RedisTokenStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

// NewRedisTokenStore builds a store scoped to one session key.
func NewRedisTokenStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisTokenStore {
	if ttl <= 0 {
		ttl = defaultCredentialsTTL
	}
	return &RedisTokenStore{client: client, sessionID: sessionID, ttl: ttl}
}

func (s *RedisTokenStore) key() string {
	return credentialsKeyPrefix + s.sessionID
}

func (s *RedisTokenStore) Save(ctx context.Context, creds *models.Credentials) error {
	payload, err := json.Marshal(credentialsJSON{
		Token:       creds.Token,
		UserID:      creds.User.ID,
		UserName:    creds.User.Name,
		Email:       creds.User.Email,
		UserType:    creds.User.UserType,
		CountryCode: creds.User.CountryCode,
		IssuedAt:    creds.IssuedAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Load(ctx context.Context) (*models.Credentials, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("no persisted credentials: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	var j credentialsJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	return &models.Credentials{
		Token: j.Token,
		User: models.User{
			ID:          j.UserID,
			Name:        j.UserName,
			Email:       j.Email,
			UserType:    j.UserType,
			CountryCode: j.CountryCode,
		},
		IssuedAt: time.Unix(0, j.IssuedAt),
	}, nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
