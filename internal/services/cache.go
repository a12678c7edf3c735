package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent (or caching is disabled).
var ErrCacheMiss = errors.New("cache miss")

type CacheService struct {
	client *redis.Client
}

// NewCacheService wraps a redis client. A nil client disables caching: every
// Get misses and every Set is a no-op, which keeps tests and degraded
// deployments working without redis.
func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{
		client: client,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if s.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if s.client == nil {
		return ErrCacheMiss
	}

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Incr increments a counter key, creating it with the given expiry. Used for
// per-user recommendation rate accounting.
func (s *CacheService) Incr(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	if s.client == nil {
		return 0, nil
	}
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	if count == 1 {
		s.client.Expire(ctx, key, expiration)
	}
	return count, nil
}

// Cache key generators
func ClubStatsCacheKey(userID uint) string {
	return fmt.Sprintf("club_stats:%d", userID)
}

func RecommendationRateKey(userID uint) string {
	return fmt.Sprintf("rec_rate:%d", userID)
}
