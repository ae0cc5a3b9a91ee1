package tokens

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRevocationsExpire(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	store := NewRedisRevocations(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	ctx := context.Background()
	require.NoError(t, store.Revoke(ctx, "tok-1", 2*time.Second))

	ok, err := store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.IsRevoked(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, ok)

	m.FastForward(3 * time.Second)
	ok, err = store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRevocationsNoClient(t *testing.T) {
	store := NewRedisRevocations(nil)
	ctx := context.Background()
	require.NoError(t, store.Revoke(ctx, "tok", time.Second))
	ok, err := store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRevocationsExpire(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewMemoryRevocations()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "tok", time.Minute))
	ok, _ := store.IsRevoked(ctx, "tok")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = store.IsRevoked(ctx, "tok")
	assert.False(t, ok)
}

func TestRevocableVerifier(t *testing.T) {
	const secret = "s3cret"
	raw, err := GenerateAdminToken(secret, &models.Admin{Sub: "a1"}, time.Hour)
	require.NoError(t, err)

	store := NewMemoryRevocations()
	v := RevocableVerifier{Verifier: NewHMACVerifier(secret), Store: store}
	ctx := context.Background()

	_, err = v.Verify(ctx, raw)
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, raw, time.Hour))
	_, err = v.Verify(ctx, raw)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestRemainingLifetime(t *testing.T) {
	now := time.Unix(1000, 0)
	assert.Equal(t, 60*time.Second, RemainingLifetime(map[string]interface{}{"exp": float64(1060)}, now))
	assert.Equal(t, time.Second, RemainingLifetime(map[string]interface{}{"exp": float64(10)}, now))
	assert.Equal(t, DefaultRevokeTTL, RemainingLifetime(map[string]interface{}{}, now))
}
