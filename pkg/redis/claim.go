package redis

import (
	"context"
	"fmt"
	"time"
)

// Claimer grants exclusive, expiring ownership of a key using SET NX PX.
// The signal scanner uses it as the cross-process uniqueness guard for
// (ticker, signal type) within the dedup window.
type Claimer struct {
	client *Client
}

// NewClaimer creates a new claimer
func NewClaimer(client *Client) *Claimer {
	return &Claimer{client: client}
}

// Enabled reports whether claims are enforced by Redis.
func (c *Claimer) Enabled() bool {
	return c.client.Enabled()
}

// Claim returns true when the caller now owns key for ttl. When Redis is disabled every
// claim succeeds and uniqueness falls back to the backing store.
func (c *Claimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if !c.client.Enabled() {
		return true, nil
	}

	ok, err := c.client.Redis().SetNX(ctx, c.client.key("claim", key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s failed: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim, used when the guarded write failed and the slot must be reusable.
func (c *Claimer) Release(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.client.key("claim", key)).Err()
}

// SignalClaimKey builds the claim key for a ticker/signal-type pair.
func SignalClaimKey(ticker, signalType string) string {
	return fmt.Sprintf("signal:%s:%s", ticker, signalType)
}
