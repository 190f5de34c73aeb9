package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appconfig "todos-app/backend/internal/config"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const opTimeout = 3 * time.Second

// RedisCache is a JSON-over-Redis cache with a circuit breaker in
// front of every operation. Callers treat any error other than
// ErrCacheMiss as "cache unavailable" and fall through to the store.
type RedisCache struct {
	client  *redis.Client
	breaker *CircuitBreaker
}

func NewRedisClient(cfg appconfig.RedisConfig, addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		breaker: NewCircuitBreaker(nil),
	}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		return r.client.Set(ctx, key, data, expiration).Err()
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	var data string
	err := r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		var err error
		data, err = r.client.Get(ctx, key).Result()
		if err == redis.Nil {
			// A miss is not a backend failure; keep the breaker closed.
			data = ""
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if data == "" {
		return ErrCacheMiss
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		return r.client.Del(ctx, keys...).Err()
	})
}

func (r *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}
