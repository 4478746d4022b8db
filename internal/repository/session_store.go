package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/cache"
	"github.com/iliyamo/memo-auth-api/internal/model"
)

// SessionStore is the refresh token store used by the use cases.  It
// keeps the durable TokenStore authoritative and treats the Redis cache
// as a read accelerator: every mutation hits the store first and only
// then invalidates the cache entry of the affected user.
type SessionStore struct {
	tokens TokenStore
	cache  *cache.SessionCache
	log    zerolog.Logger
}

// NewSessionStore layers c over tokens.  c may be nil.
func NewSessionStore(tokens TokenStore, c *cache.SessionCache, log zerolog.Logger) *SessionStore {
	return &SessionStore{tokens: tokens, cache: c, log: log.With().Str("component", "session_store").Logger()}
}

// Create persists rt as the only session of its user.
func (s *SessionStore) Create(ctx context.Context, rt *model.RefreshToken) error {
	if err := s.tokens.Replace(ctx, rt); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, rt.UserID)
	return nil
}

// FindOneByUserID returns the active session of userID.  A cache hit
// never touches the store; a miss reads the store and fills the cache
// unless the user was invalidated meanwhile.
func (s *SessionStore) FindOneByUserID(ctx context.Context, userID string) (*model.RefreshToken, error) {
	if rt, ok := s.cache.Get(ctx, userID); ok {
		return rt, nil
	}
	// The generation is read before the store so a revocation that lands
	// between the read and the fill wins.
	gen, fillable := s.cache.Generation(ctx, userID)
	rt, err := s.tokens.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if fillable {
		s.cache.Fill(ctx, rt, gen)
	}
	return rt, nil
}

// DeleteOne revokes rt.
func (s *SessionStore) DeleteOne(ctx context.Context, rt *model.RefreshToken) error {
	if err := s.tokens.DeleteByHash(ctx, rt.UserID, rt.TokenHash); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, rt.UserID)
	return nil
}

// DeleteAllByUser revokes every session of userID.
func (s *SessionStore) DeleteAllByUser(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// DeleteAll drops every session and the whole cache.  It backs the
// non-production shutdown purge.
func (s *SessionStore) DeleteAll(ctx context.Context) error {
	n, err := s.tokens.DeleteAll(ctx)
	if err != nil {
		return err
	}
	cached := s.cache.Purge(ctx)
	s.log.Info().Int64("sessions", n).Int("cache_entries", cached).Msg("purged all sessions")
	return nil
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
