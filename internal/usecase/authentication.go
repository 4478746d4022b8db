package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/utils"
)

const bearerScheme = "Bearer"

// AuthenticationInput is the raw Authorization header value.
type AuthenticationInput struct {
	Authorization string
}

// ValidateAuthentication is the per-request gate.  Beyond verifying the
// access token it requires a live session for the token's user, so an
// access token stops working as soon as its session is revoked.
type ValidateAuthentication struct{ Deps }

func NewValidateAuthentication(d Deps) *ValidateAuthentication {
	return &ValidateAuthentication{Deps: d}
}

// Exec runs the checks in order and stops at the first failure.
func (uc *ValidateAuthentication) Exec(ctx context.Context, in AuthenticationInput) (*Principal, error) {
	if strings.TrimSpace(in.Authorization) == "" {
		return nil, apperr.Unauthorized("No token provided")
	}
	scheme, token, _ := strings.Cut(in.Authorization, " ")
	if scheme != bearerScheme {
		return nil, apperr.Unauthorized("Invalid authentication type")
	}
	if token == "" {
		return nil, apperr.Unauthorized("No token provided")
	}

	claims, err := uc.Tokens.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, apperr.Unauthorized("Access token expired")
		}
		return nil, apperr.Unauthorized("Invalid access token")
	}

	session, err := uc.Sessions.FindOneByUserID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("Refresh token not found")
		}
		return nil, storeErr("Failed to load session", err)
	}

	user, err := uc.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			uc.Log.Error().Str("user_id", claims.UserID).Msg("session without user")
			return nil, apperr.Forbidden("User not found")
		}
		return nil, storeErr("Failed to load user", err)
	}

	if session.UserID != user.ID {
		uc.Log.Error().Str("user_id", user.ID).Str("session_user_id", session.UserID).Msg("session bound to another user")
		return nil, apperr.Forbidden("Refresh token does not belong to user")
	}
	return &Principal{User: user, RefreshToken: session}, nil
}
