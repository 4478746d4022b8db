package usecase

import (
	"context"
	"errors"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
	"github.com/iliyamo/memo-auth-api/internal/utils"
)

// RefreshInput is the authenticated user and the refresh token it presents.
type RefreshInput struct {
	User         *model.User
	RefreshToken string
}

// RefreshAccessToken rotates the caller's refresh token into a new
// token pair.  The old session is deleted before the new one is stored.
// Any refresh token failure is Forbidden so the client ends the session
// instead of retrying.
type RefreshAccessToken struct{ Deps }

func NewRefreshAccessToken(d Deps) *RefreshAccessToken { return &RefreshAccessToken{Deps: d} }

func (uc *RefreshAccessToken) Exec(ctx context.Context, in RefreshInput) (TokenPair, error) {
	if in.User == nil {
		return TokenPair{}, apperr.Unauthorized("No token provided")
	}
	log := uc.Log.With().Str("usecase", "refresh").Str("user_id", in.User.ID).Logger()

	claims, err := uc.Tokens.VerifyRefreshToken(in.RefreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return TokenPair{}, apperr.Forbidden("Refresh token expired")
		}
		return TokenPair{}, apperr.Forbidden("Invalid refresh token: " + in.RefreshToken)
	}
	if claims.UserID != in.User.ID {
		log.Warn().Str("claimed_user_id", claims.UserID).Msg("refresh token presented by another user")
		return TokenPair{}, apperr.Forbidden("Refresh token does not belong to user")
	}

	current, err := uc.Sessions.FindOneByUserID(ctx, in.User.ID)
	if err != nil {
		if isNotFound(err) {
			return TokenPair{}, apperr.Forbidden("Refresh token revoked")
		}
		return TokenPair{}, storeErr("Failed to load session", err)
	}
	if !current.Matches(in.RefreshToken) {
		// A correctly signed token that is no longer the active session
		// was already rotated or revoked.
		log.Warn().Msg("replayed refresh token")
		return TokenPair{}, apperr.Forbidden("Refresh token revoked")
	}

	if err := uc.Sessions.DeleteOne(ctx, current); err != nil {
		return TokenPair{}, storeErr("Failed to revoke session", err)
	}
	pair, rt, err := uc.issuePair(in.User.ID, current.DeviceID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := uc.Sessions.Create(ctx, rt); err != nil {
		return TokenPair{}, storeErr("Failed to store session", err)
	}

	uc.publish(ctx, queue.EventSessionRotated, in.User.ID, current.DeviceID)
	log.Debug().Msg("session rotated")
	return pair, nil
}
