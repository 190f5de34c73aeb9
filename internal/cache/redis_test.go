package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := c.Set(ctx, "k", payload{Name: "a", Count: 2}, time.Minute); err != nil {
		t.Fatalf("Expected set to succeed, got %v", err)
	}

	var got payload
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Expected get to succeed, got %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Errorf("Expected round-tripped payload, got %+v", got)
	}
}

func TestRedisCache_MissIsNotAFailure(t *testing.T) {
	c, _ := newTestCache(t)

	var got string
	err := c.Get(context.Background(), "absent", &got)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Expected ErrCacheMiss, got %v", err)
	}

	// Misses must not trip the breaker.
	if c.breaker.State() != CircuitBreakerClosed {
		t.Errorf("Expected breaker to stay closed on misses, got %v", c.breaker.State())
	}
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "a", "1", time.Minute)
	c.Set(ctx, "b", "2", time.Minute)

	if err := c.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}

	var got string
	if err := c.Get(ctx, "a", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected miss after delete, got %v", err)
	}

	if err := c.Delete(ctx); err != nil {
		t.Errorf("Expected no-op delete with no keys, got %v", err)
	}
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	mr.FastForward(2 * time.Minute)

	var got string
	if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected miss after expiration, got %v", err)
	}
}

func TestRedisCache_BreakerOpensWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	for i := 0; i < 6; i++ {
		c.Set(ctx, "k", "v", time.Minute)
	}

	if c.breaker.State() != CircuitBreakerOpen {
		t.Errorf("Expected breaker to open after repeated failures, got %v", c.breaker.State())
	}

	if err := c.Set(ctx, "k", "v", time.Minute); !errors.Is(err, ErrCircuitBreakerOpen) {
		t.Errorf("Expected fail-fast while open, got %v", err)
	}
}
