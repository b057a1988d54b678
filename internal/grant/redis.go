package grant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists grants with no expiry: entries go away only on confirmed
// single use or an explicit storage clear.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, ownerID string, orderID uuid.UUID, token string) error {
	if err := s.client.Set(ctx, grantKey(ownerID, orderID), token, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, ownerID string, orderID uuid.UUID) (string, error) {
	token, err := s.client.Get(ctx, grantKey(ownerID, orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrGrantNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Delete(ctx context.Context, ownerID string, orderID uuid.UUID) error {
	if err := s.client.Del(ctx, grantKey(ownerID, orderID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func grantKey(ownerID string, orderID uuid.UUID) string {
	return fmt.Sprintf("grant:%s:%s", ownerID, orderID)
}
