package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledWithoutRedis(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{PublicLookupRate: 1, PublicLookupBurst: 5, PickupLockTTL: time.Second}}
	ctx := context.Background()

	t.Run("public lookup allows everything", func(t *testing.T) {
		limiter := NewPublicLookupLimiter(cfg, nil)
		assert.False(t, limiter.Enabled())
		for i := 0; i < 10; i++ {
			res, err := limiter.AllowIP(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
	})

	t.Run("pickup lock always acquired", func(t *testing.T) {
		lock := NewPickupLock(cfg, nil)
		assert.False(t, lock.Enabled())
		release, ok, err := lock.Acquire(ctx, "3f2b8c1e-9a4d-4e6f-8b1a-2c3d4e5f6a7b")
		require.NoError(t, err)
		assert.True(t, ok)
		release()
	})

	t.Run("nil pickup lock", func(t *testing.T) {
		var lock *PickupLock
		assert.False(t, lock.Enabled())
		_, ok, err := lock.Acquire(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "public:lookup:ip:10.0.0.1", PublicLookupKey(" 10.0.0.1 "))
	assert.Equal(t, "public:lookup:ip:unknown", PublicLookupKey(""))
	assert.Equal(t, "pickup:lock:abc", PickupLockKey("abc"))
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 40*time.Second, bucketTTL(1, 20))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
	assert.Equal(t, time.Second, bucketTTL(0, 0))
}

func TestTokenBucketValidation(t *testing.T) {
	var nilBucket *TokenBucket
	res, err := nilBucket.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, ErrBucketNotConfigured)
	assert.False(t, res.Allowed)
}

func TestToFloat(t *testing.T) {
	assert.InDelta(t, 3.0, toFloat(int64(3)), 0.0001)
	assert.InDelta(t, 0.0, toFloat("x"), 0.0001)
	assert.InDelta(t, 2.5, toFloat("2.5"), 0.0001)
	assert.InDelta(t, 0.0, toFloat(nil), 0.0001)
}
