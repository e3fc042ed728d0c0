package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/quantengine/pkg/config"
)

// Client wraps the Redis client. A disabled client turns every helper into a no-op,
// so the engine runs unchanged without Redis.
type Client struct {
	rdb     *redis.Client
	enabled bool
	prefix  string
}

// New creates a new Redis client and pings it when enabled.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "quant"
	}

	if !cfg.Redis.Enabled {
		return &Client{enabled: false, prefix: prefix}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb, enabled: true, prefix: prefix}, nil
}

// NewFromRedis wraps an existing go-redis client.
func NewFromRedis(rdb *redis.Client, prefix string) *Client {
	return &Client{rdb: rdb, enabled: rdb != nil, prefix: prefix}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis returns the underlying redis client for advanced usage
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) key(kind, name string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, kind, name)
}
