package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewRateCache(client)
	ctx := context.Background()

	key := "rate:btc-currency-id"
	value := []byte(`{"rate":"60000","base_currency":"USD"}`)

	// Get before set => nil
	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Set
	err = cache.Set(ctx, key, value, 30*time.Second)
	require.NoError(t, err)

	// Get after set
	result, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestRateCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewRateCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "rate:eth-currency-id", []byte(`{"rate":"3000"}`), 1*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, "rate:eth-currency-id")
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestRateCache_Del(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewRateCache(client)
	ctx := context.Background()

	key := "rate:btc-currency-id"
	require.NoError(t, cache.Set(ctx, key, []byte(`{"rate":"60000"}`), time.Minute))

	require.NoError(t, cache.Del(ctx, key))

	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result, "deleted key should return nil")

	// Deleting a missing key is not an error
	assert.NoError(t, cache.Del(ctx, "rate:missing"))
}
