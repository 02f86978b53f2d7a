package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_JTI(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	t.Run("unknown jti is not blacklisted", func(t *testing.T) {
		blacklisted, err := bl.IsBlacklisted(ctx, "unknown-jti")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("blacklisted jti is reported", func(t *testing.T) {
		require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Minute))

		blacklisted, err := bl.IsBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})

	t.Run("expired entry is cleaned up", func(t *testing.T) {
		require.NoError(t, bl.AddToBlacklist(ctx, "jti-expired", -time.Second))

		blacklisted, err := bl.IsBlacklisted(ctx, "jti-expired")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})
}

func TestInMemoryTokenBlacklist_UserInvalidation(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issuedBefore := time.Now().Add(-time.Minute)

	t.Run("no invalidation recorded", func(t *testing.T) {
		invalidated, err := bl.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
		require.NoError(t, err)
		assert.False(t, invalidated)
	})

	t.Run("tokens issued before invalidation are rejected", func(t *testing.T) {
		require.NoError(t, bl.AddUserTokensToBlacklist(ctx, "user-1", time.Hour))

		invalidated, err := bl.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
		require.NoError(t, err)
		assert.True(t, invalidated)
	})

	t.Run("tokens issued after invalidation are accepted", func(t *testing.T) {
		invalidated, err := bl.IsUserTokenInvalidated(ctx, "user-1", time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, invalidated)
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		invalidated, err := bl.IsUserTokenInvalidated(ctx, "user-2", issuedBefore)
		require.NoError(t, err)
		assert.False(t, invalidated)
	})
}
