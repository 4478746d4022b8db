package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
	"github.com/iliyamo/memo-auth-api/internal/utils"
)

func TestRefreshRotatesSession(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "alice@example.com", "password1", model.RoleCustomer)
	d := f.addDevice(t, u)
	old := f.login(t, "alice@example.com", "password1", d.ID)

	pair, err := NewRefreshAccessToken(f.deps).Exec(context.Background(), RefreshInput{User: u, RefreshToken: old.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, old.RefreshToken, pair.RefreshToken)

	rt, err := f.deps.Sessions.FindOneByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, rt.Matches(old.RefreshToken))
	assert.True(t, rt.Matches(pair.RefreshToken))
	assert.Equal(t, d.ID, rt.DeviceID)

	p, err := f.authenticate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.User.ID)
	assert.Equal(t, []queue.EventType{queue.EventSessionCreated, queue.EventSessionRotated}, f.events.types())
}

func TestRefreshRejectsReplayedToken(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "alice@example.com", "password1", model.RoleCustomer)
	old := f.login(t, "alice@example.com", "password1", "")
	refresh := NewRefreshAccessToken(f.deps)

	_, err := refresh.Exec(context.Background(), RefreshInput{User: u, RefreshToken: old.RefreshToken})
	require.NoError(t, err)

	_, err = refresh.Exec(context.Background(), RefreshInput{User: u, RefreshToken: old.RefreshToken})
	assertAppErr(t, err, apperr.KindForbidden, "Refresh token revoked")
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "alice@example.com", "password1", model.RoleCustomer)
	other := f.addUser(t, "bob@example.com", "password1", model.RoleCustomer)
	f.login(t, "alice@example.com", "password1", "")
	refresh := NewRefreshAccessToken(f.deps)
	ctx := context.Background()

	_, err := refresh.Exec(ctx, RefreshInput{User: u, RefreshToken: "garbage"})
	assertAppErr(t, err, apperr.KindForbidden, "Invalid refresh token: garbage")

	expired, err := f.issuer.IssueRefreshTokenTTL(utils.Claims{UserID: u.ID}, -time.Minute)
	require.NoError(t, err)
	_, err = refresh.Exec(ctx, RefreshInput{User: u, RefreshToken: expired})
	assertAppErr(t, err, apperr.KindForbidden, "Refresh token expired")

	access, err := f.issuer.IssueAccessToken(utils.Claims{UserID: u.ID})
	require.NoError(t, err)
	_, err = refresh.Exec(ctx, RefreshInput{User: u, RefreshToken: access})
	assertAppErr(t, err, apperr.KindForbidden, "Invalid refresh token: "+access)

	foreign, err := f.issuer.IssueRefreshToken(utils.Claims{UserID: other.ID})
	require.NoError(t, err)
	_, err = refresh.Exec(ctx, RefreshInput{User: u, RefreshToken: foreign})
	assertAppErr(t, err, apperr.KindForbidden, "Refresh token does not belong to user")

	// The active session survives every rejected attempt.
	_, err = f.deps.Sessions.FindOneByUserID(ctx, u.ID)
	assert.NoError(t, err)
}

func TestRefreshAfterLogoutIsForbidden(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "alice@example.com", "password1", model.RoleCustomer)
	pair := f.login(t, "alice@example.com", "password1", "")
	p, err := f.authenticate(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, NewLogout(f.deps).Exec(context.Background(), LogoutInput{RefreshToken: p.RefreshToken}))

	_, err = NewRefreshAccessToken(f.deps).Exec(context.Background(), RefreshInput{User: u, RefreshToken: pair.RefreshToken})
	assertAppErr(t, err, apperr.KindForbidden, "Refresh token revoked")
}
