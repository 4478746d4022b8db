package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
)

func TestRegisterAndListDevices(t *testing.T) {
	f := newFixture(t)
	devices := NewDevices(f.deps)
	ctx := context.Background()
	alice := f.addUser(t, "alice@example.com", "password1", model.RoleCustomer)

	d, err := devices.Register(ctx, alice, " laptop ")
	require.NoError(t, err)
	assert.Equal(t, "laptop", d.Name)
	assert.False(t, d.LoggedIn)

	_, err = devices.Register(ctx, alice, "")
	assertAppErr(t, err, apperr.KindBadRequest, "name: is required")

	list, err := devices.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteBoundDeviceRevokesSession(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", "password1", model.RoleCustomer)
	d := f.addDevice(t, alice)
	pair := f.login(t, "alice@example.com", "password1", d.ID)
	p, err := f.authenticate(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, NewDevices(f.deps).Delete(context.Background(), p, d.ID))

	_, err = f.authenticate(pair.AccessToken)
	assertAppErr(t, err, apperr.KindUnauthorized, "Refresh token not found")
}

func TestDeleteForeignDevice(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", "password1", model.RoleCustomer)
	bob := f.addUser(t, "bob@example.com", "password1", model.RoleCustomer)
	d := f.addDevice(t, bob)

	err := NewDevices(f.deps).Delete(context.Background(), &Principal{User: alice}, d.ID)
	assertAppErr(t, err, apperr.KindNotFound, "Device not found")
}
