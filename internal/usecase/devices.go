package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
)

// Devices groups the device use cases.  A device is only ever visible
// to its owner.
type Devices struct{ Deps }

func NewDevices(d Deps) *Devices { return &Devices{Deps: d} }

func (uc *Devices) Register(ctx context.Context, user *model.User, name string) (*model.Device, error) {
	d, err := model.NewDevice(uuid.NewString(), user.ID, name)
	if err != nil {
		return nil, inputErr(err)
	}
	if err := uc.Devices.Create(ctx, d); err != nil {
		return nil, storeErr("Failed to create device", err)
	}
	return d, nil
}

func (uc *Devices) List(ctx context.Context, user *model.User) ([]*model.Device, error) {
	devices, err := uc.Devices.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, storeErr("Failed to list devices", err)
	}
	return devices, nil
}

// Delete removes one of the caller's devices.  If the caller's session
// is bound to it, the session is revoked as well.
func (uc *Devices) Delete(ctx context.Context, p *Principal, deviceID string) error {
	d, err := uc.Devices.FindByID(ctx, deviceID)
	if err != nil && !isNotFound(err) {
		return storeErr("Failed to load device", err)
	}
	if d == nil || d.UserID != p.User.ID {
		return apperr.NotFound("Device not found")
	}

	if p.RefreshToken != nil && p.RefreshToken.DeviceID == d.ID {
		if err := uc.Sessions.DeleteOne(ctx, p.RefreshToken); err != nil {
			return storeErr("Failed to revoke session", err)
		}
		uc.publish(ctx, queue.EventSessionRevoked, p.User.ID, d.ID)
	}
	if err := uc.Devices.Delete(ctx, d.ID); err != nil && !isNotFound(err) {
		return storeErr("Failed to delete device", err)
	}
	return nil
}
