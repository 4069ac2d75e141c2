package port

import (
	"context"
	"time"
)

// CachePort - read-through кэш агрегатов. found=false без ошибки означает промах.
type CachePort interface {
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
