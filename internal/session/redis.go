package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes in the Redis keyspace.
const (
	sessionPrefix = "nako:sess:"
	secretPrefix  = "nako:authkey:"
)

// RedisStore is a [Store] backed by a Redis hash per session. The secret slot
// is kept under its own key so that it carries a shorter TTL than the session
// itself.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	secretTTL time.Duration
}

// NewRedisStore creates a Redis-backed session store. Non-positive TTLs fall
// back to the defaults.
func NewRedisStore(client *redis.Client, ttl, secretTTL time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if secretTTL <= 0 {
		secretTTL = DefaultSecretTTL
	}
	return &RedisStore{client: client, ttl: ttl, secretTTL: secretTTL}
}

// GetField satisfies the [Store] interface.
func (s *RedisStore) GetField(ctx context.Context, sid, field string) (string, error) {
	val, err := s.client.HGet(ctx, sessionPrefix+sid, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoValue
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session field: %w", err)
	}
	return val, nil
}

// SetField satisfies the [Store] interface.
func (s *RedisStore) SetField(ctx context.Context, sid, field, value string) error {
	key := sessionPrefix + sid
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session field: %w", err)
	}
	return nil
}

// DeleteField satisfies the [Store] interface.
func (s *RedisStore) DeleteField(ctx context.Context, sid, field string) error {
	if err := s.client.HDel(ctx, sessionPrefix+sid, field).Err(); err != nil {
		return fmt.Errorf("failed to delete session field: %w", err)
	}
	return nil
}

// GetSecret satisfies the [Store] interface.
func (s *RedisStore) GetSecret(ctx context.Context, sid string) (string, error) {
	val, err := s.client.Get(ctx, secretPrefix+sid).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoValue
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session secret: %w", err)
	}
	return val, nil
}

// SetSecret satisfies the [Store] interface.
func (s *RedisStore) SetSecret(ctx context.Context, sid, value string) error {
	if err := s.client.Set(ctx, secretPrefix+sid, value, s.secretTTL).Err(); err != nil {
		return fmt.Errorf("failed to write session secret: %w", err)
	}
	return nil
}

// DeleteSecret satisfies the [Store] interface.
func (s *RedisStore) DeleteSecret(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, secretPrefix+sid).Err(); err != nil {
		return fmt.Errorf("failed to delete session secret: %w", err)
	}
	return nil
}

// Destroy satisfies the [Store] interface.
func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, sessionPrefix+sid, secretPrefix+sid).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
