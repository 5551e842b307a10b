package utils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetRedisClient(nil) })
}

func TestIdempotencyClaimAndReplay(t *testing.T) {
	withMiniRedis(t)

	// First use of a key claims it.
	id, fresh := IdempotencyClaim(3, "req-abc")
	require.True(t, fresh)
	assert.Zero(t, id)

	// Same key before completion: duplicate in flight.
	id, fresh = IdempotencyClaim(3, "req-abc")
	assert.False(t, fresh)
	assert.Zero(t, id)

	// After completion a replay resolves to the recorded comment.
	IdempotencyComplete(3, "req-abc", 42)
	id, fresh = IdempotencyClaim(3, "req-abc")
	assert.False(t, fresh)
	assert.Equal(t, uint(42), id)
}

func TestIdempotencyReleaseAllowsRetry(t *testing.T) {
	withMiniRedis(t)

	_, fresh := IdempotencyClaim(3, "req-abc")
	require.True(t, fresh)

	// A failed submission releases its claim; the retry claims the key anew
	// instead of seeing a pending duplicate.
	IdempotencyRelease(3, "req-abc")
	id, fresh := IdempotencyClaim(3, "req-abc")
	assert.True(t, fresh)
	assert.Zero(t, id)
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	withMiniRedis(t)

	_, fresh := IdempotencyClaim(3, "req-abc")
	require.True(t, fresh)

	// Another user reusing the same key string gets their own claim.
	_, fresh = IdempotencyClaim(4, "req-abc")
	assert.True(t, fresh)
}

func TestIdempotencyFailsOpenWithoutRedis(t *testing.T) {
	// Unreachable Redis must not block comment submission.
	SetRedisClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	t.Cleanup(func() { SetRedisClient(nil) })

	id, fresh := IdempotencyClaim(3, "req-abc")
	assert.True(t, fresh)
	assert.Zero(t, id)
}
