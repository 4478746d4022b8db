package model

import (
	"strings"
	"time"
)

const maxDeviceNameLen = 100

// Device is a client installation a user signs in from.  LoggedIn
// mirrors whether a live session is currently bound to the device.
//
// Fields:
//
//	ID        – UUID primary key.
//	UserID    – owner (users.id).
//	Name      – human readable label.
//	LoggedIn  – whether a session is open on this device.
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type Device struct {
	ID        string    `json:"id"`         // devices.id
	UserID    string    `json:"user_id"`    // devices.user_id
	Name      string    `json:"name"`       // devices.name
	LoggedIn  bool      `json:"logged_in"`  // devices.logged_in
	CreatedAt time.Time `json:"created_at"` // devices.created_at
	UpdatedAt time.Time `json:"updated_at"` // devices.updated_at
}

// NewDevice validates and builds a device that is not yet logged in.
func NewDevice(id, userID, name string) (*Device, error) {
	if !isUUID(id) {
		return nil, invalid("device_id", "must be a UUID")
	}
	if !isUUID(userID) {
		return nil, invalid("user_id", "must be a UUID")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if len(name) > maxDeviceNameLen {
		return nil, invalid("name", "is too long")
	}
	now := time.Now().UTC()
	return &Device{ID: id, UserID: userID, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// SetLoggedIn flips the session flag of the device.
func (d *Device) SetLoggedIn(v bool) {
	d.LoggedIn = v
	d.UpdatedAt = time.Now().UTC()
}
