package usecase

import (
	"context"
	"time"

	"github.com/ferone/Germany-real-sate/internal/contextkeys"
	"github.com/ferone/Germany-real-sate/internal/core/port"
)

// ResultCache - необязательный кэш агрегатов. nil означает "без кэша".
type ResultCache struct {
	cache port.CachePort
	ttl   time.Duration
}

func NewResultCache(cache port.CachePort, ttl time.Duration) *ResultCache {
	if cache == nil {
		return nil
	}
	return &ResultCache{cache: cache, ttl: ttl}
}

// loadCached читает из кэша, а при промахе считает через load и кладет результат в кэш.
// Сбой кэша не ломает запрос, только пишется в лог.
func loadCached[T any](ctx context.Context, rc *ResultCache, key string, load func(context.Context) (T, error)) (T, error) {
	if rc == nil {
		return load(ctx)
	}
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"cache_key": key})

	var cached T
	found, err := rc.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		logger.Warn("Cache read failed, querying partitions", port.Fields{"error": err.Error()})
	case found:
		logger.Debug("Cache hit", nil)
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := rc.cache.Set(ctx, key, value, rc.ttl); err != nil {
		logger.Warn("Cache write failed", port.Fields{"error": err.Error()})
	}
	return value, nil
}
