package ratelimit

import (
	"context"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Limiter consumes one request from the bucket identified by key.
type Limiter interface {
	Take(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error)
}

// StoreLimiter counts requests per fixed window in a ulule limiter store.
type StoreLimiter struct {
	Store limiter.Store
}

// NewMemoryLimiter returns a limiter backed by an in-process store. Counters are per process.
func NewMemoryLimiter(prefix string) StoreLimiter {
	return StoreLimiter{Store: memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          prefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})}
}

// Take increments the counter for key within rate.Period.
func (l StoreLimiter) Take(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error) {
	return l.Store.Get(ctx, key, rate)
}

// PerWindow builds a rate of max requests per window. A non-positive max disables limiting.
func PerWindow(max int, window time.Duration) limiter.Rate {
	if max < 0 {
		max = 0
	}
	return limiter.Rate{Period: window, Limit: int64(max)}
}
