package quotes

import (
	"context"
	"strings"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/pkg/logger"
	"github.com/wonny/quantengine/pkg/redis"
)

// CachedSource keeps each fetched quote in Redis for redis.TTLQuote so that
// repeated audits of one ticker hit the upstream once.
type CachedSource struct {
	source contracts.QuoteSource
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedSource wraps source. With Redis disabled every call goes upstream.
func NewCachedSource(source contracts.QuoteSource, cache *redis.Cache, log *logger.Logger) *CachedSource {
	return &CachedSource{source: source, cache: cache, logger: log.WithComponent("quotes")}
}

// LatestPrice serves from cache, else fetches and caches.
func (s *CachedSource) LatestPrice(ctx context.Context, ticker string) (float64, error) {
	key := redis.QuoteKey(strings.ToUpper(ticker))

	var price float64
	found, err := s.cache.Get(ctx, key, &price)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Quote cache read failed")
	}
	if found {
		return price, nil
	}

	price, err = s.source.LatestPrice(ctx, ticker)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, price, redis.TTLQuote); err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Quote cache write failed")
	}
	return price, nil
}
