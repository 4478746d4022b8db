package model

import (
	"strings"
	"time"
)

// Role is the authorization level of a user.  It is fixed when the
// user is created and drives the coarse authorization gate.
type Role string

const (
	RoleRoot     Role = "ROOT"
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole normalizes s and reports whether it names a declared role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRoot, RoleAdmin, RoleCustomer:
		return true
	}
	return false
}

// Elevated reports whether r passes the authorization gate.
func (r Role) Elevated() bool { return r == RoleAdmin || r == RoleRoot }

// User represents an application user record as stored in the `users`
// table.  The password is an opaque bcrypt hash and is never serialized.
//
// Fields:
//
//	ID        – UUID primary key, immutable.
//	Email     – unique, normalized (lower case) email address.
//	Password  – bcrypt hash of the user's password.
//	Role      – ROOT, ADMIN or CUSTOMER, immutable after creation.
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type User struct {
	ID        string    `json:"id"`         // users.id
	Email     string    `json:"email"`      // users.email
	Password  string    `json:"-"`          // users.password_hash
	Role      Role      `json:"role"`       // users.role
	CreatedAt time.Time `json:"created_at"` // users.created_at
	UpdatedAt time.Time `json:"updated_at"` // users.updated_at
}

// NewUser validates its input and returns a fully formed User.  No
// partial entity is ever returned: on failure the result is nil and the
// error is a *ValidationError naming the offending field.
func NewUser(id, email, passwordHash string, role Role) (*User, error) {
	if !isUUID(id) {
		return nil, invalid("id", "must be a UUID")
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, invalid("password", "is required")
	}
	if !role.Valid() {
		return nil, invalid("role", "must be one of ROOT, ADMIN, CUSTOMER")
	}
	now := time.Now().UTC()
	return &User{
		ID:        id,
		Email:     normalized,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetEmail validates and assigns a new email address.
func (u *User) SetEmail(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	u.Email = normalized
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// SetPassword assigns a new password hash.
func (u *User) SetPassword(hash string) error {
	if hash == "" {
		return invalid("password", "is required")
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}
