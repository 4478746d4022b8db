package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/memo-auth-api/internal/config"
	"github.com/iliyamo/memo-auth-api/internal/model"
)

func newTestCache(t *testing.T) (*SessionCache, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	cfg := config.SessionCacheConfig{Enabled: true, TTL: time.Minute, Prefix: "session"}
	return NewSessionCache(cfg, client, zerolog.Nop()), server
}

func newToken(t *testing.T) *model.RefreshToken {
	t.Helper()
	rt, err := model.NewRefreshToken(uuid.NewString(), "raw-"+uuid.NewString(), "")
	require.NoError(t, err)
	return rt
}

func TestSessionCacheSetGetInvalidate(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()
	rt := newToken(t)

	_, ok := c.Get(ctx, rt.UserID)
	assert.False(t, ok)

	gen, ok := c.Generation(ctx, rt.UserID)
	require.True(t, ok)
	require.True(t, c.Fill(ctx, rt, gen))
	got, ok := c.Get(ctx, rt.UserID)
	require.True(t, ok)
	assert.Equal(t, rt.TokenHash, got.TokenHash)
	assert.Equal(t, rt.UserID, got.UserID)

	ttl := server.TTL("session:" + rt.UserID)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	c.Invalidate(ctx, rt.UserID)
	_, ok = c.Get(ctx, rt.UserID)
	assert.False(t, ok)
}

func TestSessionCacheCorruptEntryIsMiss(t *testing.T) {
	c, server := newTestCache(t)
	userID := uuid.NewString()
	require.NoError(t, server.Set("session:"+userID, "{not json"))

	_, ok := c.Get(context.Background(), userID)
	assert.False(t, ok)
}

func TestSessionCachePurge(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		rt := newToken(t)
		require.True(t, c.Fill(ctx, rt, "0"))
	}
	require.NoError(t, server.Set("other:key", "keep"))

	assert.Equal(t, 2, c.Purge(ctx))
	assert.True(t, server.Exists("other:key"))
}

func TestSessionCacheNotReadyIsNoop(t *testing.T) {
	c := NewSessionCache(config.SessionCacheConfig{Enabled: true}, nil, zerolog.Nop())
	ctx := context.Background()
	rt := newToken(t)

	assert.False(t, c.Ready())
	_, ok := c.Generation(ctx, rt.UserID)
	assert.False(t, ok)
	assert.False(t, c.Fill(ctx, rt, "0"))
	_, ok = c.Get(ctx, rt.UserID)
	assert.False(t, ok)
	c.Invalidate(ctx, rt.UserID)
	assert.Zero(t, c.Purge(ctx))
}

func TestSessionCacheFillAfterInvalidateIsDropped(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()
	rt := newToken(t)

	gen, ok := c.Generation(ctx, rt.UserID)
	require.True(t, ok)
	c.Invalidate(ctx, rt.UserID)

	assert.False(t, c.Fill(ctx, rt, gen))
	assert.False(t, server.Exists("session:"+rt.UserID))
	_, ok = c.Get(ctx, rt.UserID)
	assert.False(t, ok)

	gen, ok = c.Generation(ctx, rt.UserID)
	require.True(t, ok)
	assert.Equal(t, "1", gen)
	assert.True(t, c.Fill(ctx, rt, gen))
}

func TestSessionCachePurgeKeepsGenerations(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()
	rt := newToken(t)
	c.Invalidate(ctx, rt.UserID)

	assert.Zero(t, c.Purge(ctx))
	assert.True(t, server.Exists("session-gen:"+rt.UserID))
}

func TestSessionCacheUnreachableRedisIsMiss(t *testing.T) {
	c, server := newTestCache(t)
	server.Close()

	_, ok := c.Get(context.Background(), uuid.NewString())
	assert.False(t, ok)
}
