package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"meal-planner/internal/infrastructure/config"
)

func TestNewRedisBackendFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := NewRedisBackend(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestRedisBackendPingReportsUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	backend := NewRedisBackendWithClient(client)
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := backend.Ping(ctx); err == nil {
		t.Error("Ping() should fail without a server")
	}
	if _, err := backend.Get(ctx, "recipeApp-ingredients"); err == nil || err == ErrNotFound {
		t.Errorf("Get() error = %v, want connection error", err)
	}
}
