package aicache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore adapts a go-redis client to the Volatile interface.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{Client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrVolatileMiss
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.Client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
