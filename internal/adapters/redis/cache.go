package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheObserver принимает события кэша: hit|miss|set|error
type CacheObserver interface {
	ObserveCache(event string)
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Cache - read-through кэш агрегатов в Redis, значения хранятся в JSON
type Cache struct {
	c        *redis.Client
	observer CacheObserver
}

func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewCache(c *redis.Client, observer CacheObserver) (*Cache, error) {
	if c == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Cache{c: c, observer: observer}, nil
}

// Ping проверяет соединение при старте
func (r *Cache) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.observer.ObserveCache("miss")
		return false, nil
	}
	if err != nil {
		r.observer.ObserveCache("error")
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(v, dst); err != nil {
		r.observer.ObserveCache("error")
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	r.observer.ObserveCache("hit")
	return true, nil
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", key, err)
	}
	if err := r.c.Set(ctx, key, b, ttl).Err(); err != nil {
		r.observer.ObserveCache("error")
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.observer.ObserveCache("set")
	return nil
}

func (r *Cache) Close() error {
	return r.c.Close()
}

type noopObserver struct{}

func (noopObserver) ObserveCache(string) {}
