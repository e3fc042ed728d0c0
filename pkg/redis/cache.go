package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides JSON-typed caching on top of Client.
type Cache struct {
	client *Client
}

// NewCache creates a new cache helper
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Get retrieves a cached value. Reports false on a miss or when Redis is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.client.key("cache", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.client.key("cache", key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.client.key("cache", key)).Err()
}

const (
	TTLRanking = 24 * time.Hour
	TTLQuote   = 5 * time.Minute
)

// LatestRankingKey is where the pipeline publishes the most recent ranking.
const LatestRankingKey = "ranking:latest"

// RankingKey keys a ranking by its run date.
func RankingKey(date time.Time) string {
	return fmt.Sprintf("ranking:%s", date.Format("2006-01-02"))
}

// QuoteKey keys a ticker's latest quote.
func QuoteKey(ticker string) string {
	return "quote:" + ticker
}
