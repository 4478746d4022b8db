package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
	"github.com/iliyamo/memo-auth-api/internal/repository"
	"github.com/iliyamo/memo-auth-api/internal/utils"
)

// Deps bundles the collaborators shared by the use cases.  It is built
// once at startup and passed by value to each constructor.  Events may
// be nil, in which case nothing is published.
type Deps struct {
	Users    UserRepository
	Sessions SessionStore
	Devices  DeviceRepository
	Memos    MemoRepository
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Events   EventPublisher
	Log      zerolog.Logger
}

// Principal is the outcome of a successful authentication: the caller
// and the session its access token is tied to.
type Principal struct {
	User         *model.User
	RefreshToken *model.RefreshToken
}

// TokenPair is returned by Login and RefreshAccessToken.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// issuePair mints a token pair for userID and builds the session entity
// for the new refresh token.  Entity validation failures surface as
// internal errors carrying the validation message.
func (d Deps) issuePair(userID, deviceID string) (TokenPair, *model.RefreshToken, error) {
	claims := utils.Claims{UserID: userID}
	access, err := d.Tokens.IssueAccessToken(claims)
	if err != nil {
		return TokenPair{}, nil, apperr.Internal("Failed to issue access token", err)
	}
	refresh, err := d.Tokens.IssueRefreshToken(claims)
	if err != nil {
		return TokenPair{}, nil, apperr.Internal("Failed to issue refresh token", err)
	}
	rt, err := model.NewRefreshToken(userID, refresh, deviceID)
	if err != nil {
		return TokenPair{}, nil, apperr.Internal("", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, rt, nil
}

func (d Deps) publish(ctx context.Context, typ queue.EventType, userID, deviceID string) {
	if d.Events == nil {
		return
	}
	if err := d.Events.Publish(ctx, queue.NewSessionEvent(typ, userID, deviceID)); err != nil {
		d.Log.Warn().Err(err).Str("event", string(typ)).Str("user_id", userID).Msg("session event not published")
	}
}

// currentSession returns the active session of userID, or nil if the
// user has none.
func (d Deps) currentSession(ctx context.Context, userID string) (*model.RefreshToken, error) {
	rt, err := d.Sessions.FindOneByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return rt, nil
}

// releaseDevice marks the device of a session that is going away as
// logged out.  A missing device or one owned by someone else is left alone.
func (d Deps) releaseDevice(ctx context.Context, rt *model.RefreshToken) error {
	if rt == nil || rt.DeviceID == "" {
		return nil
	}
	dev, err := d.Devices.FindByID(ctx, rt.DeviceID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if dev.UserID != rt.UserID || !dev.LoggedIn {
		return nil
	}
	dev.SetLoggedIn(false)
	return d.Devices.Update(ctx, dev)
}

// storeErr wraps an unexpected repository failure.
func storeErr(msg string, err error) error {
	return apperr.Internal(msg, err)
}

// inputErr turns an entity validation failure on client supplied input
// into a BadRequest; anything else is internal.
func inputErr(err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return apperr.BadRequest(verr.Error())
	}
	return apperr.Internal("", err)
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }
