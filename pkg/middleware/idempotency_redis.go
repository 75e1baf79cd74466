package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"probook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisIdempotencyPrefix = "probook:idempotency:"

// RedisIdempotencyStore shares cached responses between API replicas.
// Redis failures degrade to "not cached" instead of failing the request.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl, log: log}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	data, err := s.client.Get(ctx, redisIdempotencyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Idempotency lookup failed", "error", err)
		}
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("Discarding unreadable idempotency entry", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now().UTC()
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Warn("Failed to encode idempotent response", "error", err)
		return
	}
	// SetNX keeps the first stored response when two retries race.
	if err := s.client.SetNX(ctx, redisIdempotencyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("Failed to store idempotent response", "error", err)
	}
}

// Stop is a no-op; the Redis client is closed with the other store connections.
func (s *RedisIdempotencyStore) Stop() {}
