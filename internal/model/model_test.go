package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	id := uuid.NewString()

	u, err := NewUser(id, "  Alice@Example.com ", "hash", RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestNewUserRejectsMalformedInput(t *testing.T) {
	id := uuid.NewString()
	cases := []struct {
		name  string
		id    string
		email string
		hash  string
		role  Role
		field string
	}{
		{"bad id", "42", "a@example.com", "hash", RoleAdmin, "id"},
		{"bad email", id, "not-an-email", "hash", RoleAdmin, "email"},
		{"display name email", id, "Bob <bob@example.com>", "hash", RoleAdmin, "email"},
		{"empty hash", id, "a@example.com", "", RoleAdmin, "password"},
		{"bad role", id, "a@example.com", "hash", Role("OWNER"), "role"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := NewUser(tc.id, tc.email, tc.hash, tc.role)
			assert.Nil(t, u)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestRoleElevated(t *testing.T) {
	assert.True(t, RoleRoot.Elevated())
	assert.True(t, RoleAdmin.Elevated())
	assert.False(t, RoleCustomer.Elevated())

	r, ok := ParseRole(" admin ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)
	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestNewRefreshToken(t *testing.T) {
	userID := uuid.NewString()

	rt, err := NewRefreshToken(userID, "raw-token", "")
	require.NoError(t, err)
	assert.Equal(t, userID, rt.UserID)
	assert.Equal(t, HashToken("raw-token"), rt.TokenHash)
	assert.NotEqual(t, "raw-token", rt.TokenHash)
	assert.True(t, rt.Matches("raw-token"))
	assert.False(t, rt.Matches("other-token"))

	_, err = NewRefreshToken("nope", "raw-token", "")
	assert.EqualError(t, err, "user_id: must be a UUID")
	_, err = NewRefreshToken(userID, "", "")
	assert.EqualError(t, err, "token: is required")
	_, err = NewRefreshToken(userID, "raw-token", "phone")
	assert.EqualError(t, err, "device_id: must be a UUID")
}

func TestNewDeviceAndMemo(t *testing.T) {
	userID := uuid.NewString()

	d, err := NewDevice(uuid.NewString(), userID, " laptop ")
	require.NoError(t, err)
	assert.Equal(t, "laptop", d.Name)
	assert.False(t, d.LoggedIn)
	d.SetLoggedIn(true)
	assert.True(t, d.LoggedIn)

	_, err = NewDevice(uuid.NewString(), userID, "   ")
	assert.EqualError(t, err, "name: is required")

	m, err := NewMemo(uuid.NewString(), userID, "groceries", "milk")
	require.NoError(t, err)
	assert.True(t, m.OwnedBy(userID))
	assert.False(t, m.OwnedBy(uuid.NewString()))
	assert.EqualError(t, m.Edit("", "x"), "title: is required")
	assert.Equal(t, "groceries", m.Title)
}
