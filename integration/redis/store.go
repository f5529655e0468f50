package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/restokit/core/credential"
)

const credentialKey = "credential"

// CredentialStore keeps the API credential in Redis under "<prefix>:credential",
// so several CLI hosts can share one login.
type CredentialStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewCredentialStore creates a store on an existing client.
// A zero ttl keeps the credential until Clear is called.
func NewCredentialStore(client redis.UniversalClient, prefix string, ttl time.Duration) (*CredentialStore, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	key := credentialKey
	if prefix = strings.Trim(strings.TrimSpace(prefix), ":"); prefix != "" {
		key = prefix + ":" + credentialKey
	}
	return &CredentialStore{client: client, key: key, ttl: max(ttl, 0)}, nil
}

// Key returns the Redis key the credential is stored under.
func (s *CredentialStore) Key() string {
	return s.key
}

func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", credential.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis credential store: load: %w", err)
	}
	token := strings.TrimSpace(v)
	if token == "" {
		return "", credential.ErrNotFound
	}
	return token, nil
}

func (s *CredentialStore) Save(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis credential store: save: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis credential store: clear: %w", err)
	}
	return nil
}

var _ credential.Store = (*CredentialStore)(nil)
