package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
	"github.com/jhaveri/fie/pkg/redis"
)

// CachedProvider wraps a PriceProvider with a Redis read-through cache
// keyed per symbol and day. Cache failures degrade to the underlying
// provider.
type CachedProvider struct {
	inner  contracts.PriceProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachedProvider(inner contracts.PriceProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

func (c *CachedProvider) History(ctx context.Context, symbol string) ([]contracts.PricePoint, error) {
	key := fmt.Sprintf("prices:%s:%s", symbol, time.Now().Format("2006-01-02"))

	var bars []contracts.PricePoint
	hit, err := c.cache.Get(ctx, key, &bars)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Price cache read failed")
	}
	if hit && len(bars) > 0 {
		return bars, nil
	}

	bars, err = c.inner.History(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, bars, c.ttl); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Price cache write failed")
	}
	return bars, nil
}
