package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantengine/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), &config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.Equal(t, "quant:cache:x", client.key("cache", "x"))
	assert.NoError(t, client.Close())
}

func TestClaimer_Disabled(t *testing.T) {
	claimer := NewClaimer(disabledClient(t))
	ctx := context.Background()

	ok, err := claimer.Claim(ctx, SignalClaimKey("PETR4", "RSI_OVERSOLD"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	// Without Redis every claim succeeds; the store's unique key is the guard.
	ok, err = claimer.Claim(ctx, SignalClaimKey("PETR4", "RSI_OVERSOLD"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, claimer.Release(ctx, "anything"))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, LatestRankingKey, []string{"a"}, TTLRanking))

	var out []string
	found, err := cache.Get(ctx, LatestRankingKey, &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, LatestRankingKey))
}

func TestRankingKey(t *testing.T) {
	date := time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "ranking:2026-03-09", RankingKey(date))
	assert.Equal(t, "quote:PETR4", QuoteKey("PETR4"))
}

func TestClaimer_Integration(t *testing.T) {
	if os.Getenv("REDIS_ENABLED") != "true" {
		t.Skip("REDIS_ENABLED not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Redis.Prefix = "quant-test"

	ctx := context.Background()
	client, err := New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	claimer := NewClaimer(client)
	key := SignalClaimKey("TEST3", "DEEP_VALUE")
	_ = claimer.Release(ctx, key)

	first, err := claimer.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	second, err := claimer.Claim(ctx, key, time.Minute)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	require.NoError(t, claimer.Release(ctx, key))
}
