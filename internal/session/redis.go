package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key the credential is stored under.
const DefaultKey = "storefront:session:token"

// RedisStore keeps the credential in a single Redis key so several storefront
// processes share one sign-in.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store. A zero ttl keeps the key until
// it is cleared.
func NewRedisStore(client redis.UniversalClient, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get session: %w", err)
	}
	return token, nil
}

// SetToken stores token. When ttl is zero and the token carries an expiry,
// the key expires with it.
func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	ttl := s.ttl
	if ttl == 0 {
		if claims, err := ParseClaims(token); err == nil && !claims.ExpiresAt.IsZero() {
			if remaining := time.Until(claims.ExpiresAt); remaining > 0 {
				ttl = remaining
			}
		}
	}
	if err := s.client.Set(ctx, s.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
