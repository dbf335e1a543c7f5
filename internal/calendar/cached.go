package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/commodity-desk/pricer/internal/metrics"
)

// JSONCache is the subset of the store used to cache trading-day lookups.
type JSONCache interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
}

// CachedSource wraps a Source with a JSON cache. Cache failures fall through
// to the underlying source, so a broken cache degrades to slower lookups.
type CachedSource struct {
	logger *zap.Logger
	next   Source
	cache  JSONCache
	ttl    time.Duration
}

// NewCachedSource creates a caching wrapper around next.
func NewCachedSource(logger *zap.Logger, next Source, cache JSONCache, ttl time.Duration) *CachedSource {
	return &CachedSource{
		logger: logger,
		next:   next,
		cache:  cache,
		ttl:    ttl,
	}
}

func cacheKey(exchangeCode string, start, end time.Time) string {
	return fmt.Sprintf("caldays:%s:%s:%s", exchangeCode, start.Format(dateLayout), end.Format(dateLayout))
}

func (s *CachedSource) TradingDays(ctx context.Context, exchangeCode string, start, end time.Time) ([]time.Time, error) {
	key := cacheKey(exchangeCode, start, end)

	var cached []time.Time
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil && len(cached) > 0 {
		metrics.IncCalendarCache("hit")
		return cached, nil
	}
	metrics.IncCalendarCache("miss")

	days, err := s.next.TradingDays(ctx, exchangeCode, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, days, s.ttl); err != nil {
		s.logger.Warn("calendar.cache_write_failed",
			zap.String("key", key),
			zap.Error(err))
	}
	return days, nil
}
