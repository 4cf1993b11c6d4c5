package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), OutreachRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, OutreachRateLimit.Limit, remaining)
	assert.NoError(t, limiter.Wait(context.Background(), RefreshRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetDisabledCallsThrough(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	calls := 0
	var got map[string]string
	err := cache.GetOrSet(context.Background(), "k", &got, time.Minute, func() (interface{}, error) {
		calls++
		return map[string]string{"script": "hello"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "hello", got["script"])
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{"OutreachKey", func() string { return OutreachKey("snap-1", "action-leak-abc") }, "outreach:snap-1:action-leak-abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn())
		})
	}
}

func TestRateLimitConfig_PerClient(t *testing.T) {
	cfg := OutreachRateLimit.PerClient("10.0.0.1")
	assert.Equal(t, "outreach:10.0.0.1", cfg.Key)
	assert.Equal(t, OutreachRateLimit.Limit, cfg.Limit)
	assert.Equal(t, "outreach", OutreachRateLimit.Key, "shared config untouched")
}
