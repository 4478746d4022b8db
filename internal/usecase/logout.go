package usecase

import (
	"context"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
)

// LogoutInput is the session being closed, as resolved by authentication.
type LogoutInput struct {
	RefreshToken *model.RefreshToken
}

// Logout revokes a session and marks its device as logged out.  A
// session opened without a device has no device step.
type Logout struct{ Deps }

func NewLogout(d Deps) *Logout { return &Logout{Deps: d} }

func (uc *Logout) Exec(ctx context.Context, in LogoutInput) error {
	rt := in.RefreshToken
	if rt == nil {
		return apperr.Unauthorized("Refresh token not found")
	}

	var device *model.Device
	if rt.DeviceID != "" {
		d, err := uc.Devices.FindByID(ctx, rt.DeviceID)
		if err != nil && !isNotFound(err) {
			return storeErr("Failed to load device", err)
		}
		if d == nil || d.UserID != rt.UserID {
			return apperr.NotFound("Device not found")
		}
		device = d
	}

	if err := uc.Sessions.DeleteOne(ctx, rt); err != nil {
		return storeErr("Failed to revoke session", err)
	}
	if device != nil {
		device.SetLoggedIn(false)
		if err := uc.Devices.Update(ctx, device); err != nil {
			return storeErr("Failed to update device", err)
		}
	}

	uc.publish(ctx, queue.EventSessionRevoked, rt.UserID, rt.DeviceID)
	uc.Log.Info().Str("usecase", "logout").Str("user_id", rt.UserID).Msg("session revoked")
	return nil
}
