package usecase

import (
	"context"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/logger"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
)

const msgBadCredentials = "Invalid email or password"

// LoginInput carries the credentials.  DeviceID is optional; when set
// the new session is bound to that device.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"device_id"`
}

// Login verifies credentials and opens a session.  Opening a session
// replaces any session the user already had.
type Login struct{ Deps }

func NewLogin(d Deps) *Login { return &Login{Deps: d} }

func (uc *Login) Exec(ctx context.Context, in LoginInput) (TokenPair, error) {
	log := uc.Log.With().Str("usecase", "login").Str("email", logger.MaskEmail(in.Email)).Logger()

	user, err := uc.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		if isNotFound(err) {
			log.Warn().Msg("login failed: unknown email")
			return TokenPair{}, apperr.Unauthorized(msgBadCredentials)
		}
		return TokenPair{}, storeErr("Failed to load user", err)
	}
	if !uc.Hasher.Compare(user.Password, in.Password) {
		log.Warn().Str("user_id", user.ID).Msg("login failed: wrong password")
		return TokenPair{}, apperr.Unauthorized(msgBadCredentials)
	}

	var device *model.Device
	if in.DeviceID != "" {
		device, err = uc.Devices.FindByID(ctx, in.DeviceID)
		if err != nil && !isNotFound(err) {
			return TokenPair{}, storeErr("Failed to load device", err)
		}
		if device == nil || device.UserID != user.ID {
			return TokenPair{}, apperr.NotFound("Device not found")
		}
	}

	// The session being replaced may be bound to another device.
	prior, err := uc.currentSession(ctx, user.ID)
	if err != nil {
		return TokenPair{}, storeErr("Failed to load session", err)
	}

	pair, rt, err := uc.issuePair(user.ID, in.DeviceID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := uc.Sessions.Create(ctx, rt); err != nil {
		return TokenPair{}, storeErr("Failed to store session", err)
	}
	if prior != nil && prior.DeviceID != in.DeviceID {
		if err := uc.releaseDevice(ctx, prior); err != nil {
			log.Warn().Err(err).Str("device_id", prior.DeviceID).Msg("previous device not marked logged out")
		}
	}
	if device != nil {
		device.SetLoggedIn(true)
		if err := uc.Devices.Update(ctx, device); err != nil {
			// The client never sees this session, so it must not stay live.
			if rerr := uc.Sessions.DeleteOne(ctx, rt); rerr != nil {
				log.Error().Err(rerr).Msg("orphaned session not revoked")
			}
			return TokenPair{}, storeErr("Failed to update device", err)
		}
	}

	uc.publish(ctx, queue.EventSessionCreated, user.ID, in.DeviceID)
	log.Info().Str("user_id", user.ID).Msg("session opened")
	return pair, nil
}
