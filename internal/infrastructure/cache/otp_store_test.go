package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOTPStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := NewMemoryOTPStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "9876543210", &domainRepo.OTPChallenge{CodeHash: "h", TableNumber: 4}, 5*time.Minute))

	got, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, 4, got.TableNumber)
	assert.Equal(t, now.Add(5*time.Minute), got.ExpiresAt)

	n, err := store.IncrementAttempts(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	now = now.Add(5 * time.Minute)
	_, err = store.Get(ctx, "9876543210")
	assert.ErrorIs(t, err, domainRepo.ErrCacheMiss)

	_, err = store.IncrementAttempts(ctx, "9876543210")
	assert.ErrorIs(t, err, domainRepo.ErrCacheMiss)
}

func TestNoopSettingsCache(t *testing.T) {
	var c NoopSettingsCache
	_, err := c.Get(context.Background())
	assert.ErrorIs(t, err, domainRepo.ErrCacheMiss)
	assert.NoError(t, c.Invalidate(context.Background()))
}

func newRedisOTPStore(t *testing.T) (*RedisOTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisOTPStore(client), mr
}

func TestRedisOTPStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisOTPStore(t)
	expires := time.Date(2026, 3, 14, 12, 5, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "9876543210", &domainRepo.OTPChallenge{
		CodeHash:    "h",
		TableNumber: 4,
		ExpiresAt:   expires,
	}, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mr.TTL("otp:9876543210"))

	got, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "h", got.CodeHash)
	assert.Equal(t, 4, got.TableNumber)
	assert.True(t, expires.Equal(got.ExpiresAt))

	n, err := store.IncrementAttempts(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = store.IncrementAttempts(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 5*time.Minute, mr.TTL("otp:9876543210"))

	require.NoError(t, store.Delete(ctx, "9876543210"))
	_, err = store.Get(ctx, "9876543210")
	assert.ErrorIs(t, err, domainRepo.ErrCacheMiss)
}

func TestRedisOTPStore_IncrementAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisOTPStore(t)

	require.NoError(t, store.Save(ctx, "9876543210", &domainRepo.OTPChallenge{CodeHash: "h", TableNumber: 2}, time.Minute))
	mr.FastForward(time.Minute + time.Second)

	_, err := store.IncrementAttempts(ctx, "9876543210")
	assert.ErrorIs(t, err, domainRepo.ErrCacheMiss)
	assert.False(t, mr.Exists("otp:9876543210"), "expired challenge must not be recreated")
}
