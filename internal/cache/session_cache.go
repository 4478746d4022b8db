// Package cache holds the Redis read accelerator for sessions.  The
// database stays authoritative: every method here is best-effort and a
// missing or unreachable Redis degrades to cache misses and no-op writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/config"
	"github.com/iliyamo/memo-auth-api/internal/model"
)

// invalidateScript bumps the user's generation and drops the cached
// session in one step.
var invalidateScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[1])
return redis.call('DEL', KEYS[1])
`)

// fillScript writes the session only if the generation is still the one
// the reader saw before it queried the store.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// genTTL bounds how long an idle user's generation counter is kept.  It
// must outlive any read that races an invalidation.
const genTTL = 24 * time.Hour

// SessionCache stores one JSON encoded RefreshToken per user under
// "<prefix>:<userID>".  Every invalidation bumps a per-user generation
// under "<prefix>-gen:<userID>"; a fill carries the generation read
// before the store query and is dropped if an invalidation happened in
// between.
type SessionCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSessionCache returns a cache bound to rdb.  A nil client or a
// disabled config yields a cache that never hits.
func NewSessionCache(cfg config.SessionCacheConfig, rdb *redis.Client, log zerolog.Logger) *SessionCache {
	if !cfg.Enabled {
		rdb = nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "session"
	}
	return &SessionCache{rdb: rdb, prefix: prefix, ttl: ttl, log: log.With().Str("component", "session_cache").Logger()}
}

// Ready reports whether a Redis client is configured.
func (c *SessionCache) Ready() bool { return c != nil && c.rdb != nil }

func (c *SessionCache) key(userID string) string { return fmt.Sprintf("%s:%s", c.prefix, userID) }

func (c *SessionCache) genKey(userID string) string {
	return fmt.Sprintf("%s-gen:%s", c.prefix, userID)
}

// Get returns the cached session of userID.  ok is false on a miss, on
// a decode failure and whenever Redis is not ready.
func (c *SessionCache) Get(ctx context.Context, userID string) (*model.RefreshToken, bool) {
	if !c.Ready() {
		return nil, false
	}
	bs, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("user_id", userID).Msg("session cache get failed")
		}
		return nil, false
	}
	var rt model.RefreshToken
	if err := json.Unmarshal(bs, &rt); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("session cache entry is corrupt")
		return nil, false
	}
	return &rt, true
}

// Generation returns the current invalidation generation of userID.
// Read it before querying the store and pass it to Fill.  ok is false
// when the cache is not ready or Redis fails; callers skip the fill then.
func (c *SessionCache) Generation(ctx context.Context, userID string) (gen string, ok bool) {
	if !c.Ready() {
		return "", false
	}
	gen, err := c.rdb.Get(ctx, c.genKey(userID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0", true
	case err != nil:
		c.log.Warn().Err(err).Str("user_id", userID).Msg("session cache generation read failed")
		return "", false
	}
	return gen, true
}

// Fill stores rt unless its user was invalidated after gen was read.
// It reports whether the entry was written.
func (c *SessionCache) Fill(ctx context.Context, rt *model.RefreshToken, gen string) bool {
	if !c.Ready() || rt == nil {
		return false
	}
	bs, err := json.Marshal(rt)
	if err != nil {
		c.log.Warn().Err(err).Msg("session cache encode failed")
		return false
	}
	keys := []string{c.key(rt.UserID), c.genKey(rt.UserID)}
	n, err := fillScript.Run(ctx, c.rdb, keys, gen, bs, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", rt.UserID).Msg("session cache set failed")
		return false
	}
	return n == 1
}

// Invalidate drops the cached session of userID and bumps its
// generation so a fill already in flight is discarded.
func (c *SessionCache) Invalidate(ctx context.Context, userID string) {
	if !c.Ready() {
		return
	}
	keys := []string{c.key(userID), c.genKey(userID)}
	ttl := genTTL
	if c.ttl > ttl {
		ttl = c.ttl
	}
	if err := invalidateScript.Run(ctx, c.rdb, keys, ttl.Milliseconds()).Err(); err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("session cache invalidation failed")
	}
}

// Purge removes every cached session.  It scans instead of using KEYS so
// a large keyspace does not block Redis.  Generation counters are kept.
func (c *SessionCache) Purge(ctx context.Context) int {
	if !c.Ready() {
		return 0
	}
	removed := 0
	iter := c.rdb.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err == nil {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("session cache purge failed")
	}
	return removed
}
