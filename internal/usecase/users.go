package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
	"github.com/iliyamo/memo-auth-api/internal/repository"
)

const minPasswordLen = 8

// CreateUserInput describes a new account.  Actor is nil for public
// registration, which always yields a customer.
type CreateUserInput struct {
	Actor    *model.User
	Email    string
	Password string
	Role     model.Role
}

type UpdateUserInput struct {
	User            *model.User
	Email           *string
	Password        *string
	CurrentPassword string
}

type DeleteUserInput struct {
	Actor  *model.User
	UserID string
}

// Users groups the account management use cases.
type Users struct{ Deps }

func NewUsers(d Deps) *Users { return &Users{Deps: d} }

// Create registers an account.  Admins may create customers, only root
// may create admins, and root accounts are never created this way.
func (uc *Users) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	role := model.RoleCustomer
	if in.Actor != nil {
		if in.Role != "" {
			role = in.Role
		}
		switch {
		case !role.Valid():
			return nil, apperr.BadRequest("role: must be one of ADMIN, CUSTOMER")
		case role == model.RoleRoot:
			return nil, apperr.Forbidden("Root users cannot be created")
		case role == model.RoleAdmin && in.Actor.Role != model.RoleRoot:
			return nil, apperr.Forbidden("Only root can create admins")
		}
	}
	return uc.create(ctx, in.Email, in.Password, role)
}

// EnsureRootUser creates the root account if no user owns email yet.
func (uc *Users) EnsureRootUser(ctx context.Context, email, password string) (*model.User, error) {
	existing, err := uc.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != model.RoleRoot {
			uc.Log.Warn().Str("user_id", existing.ID).Msg("root email belongs to a non-root user")
		}
		return existing, nil
	case !isNotFound(err):
		return nil, storeErr("Failed to load user", err)
	}
	u, err := uc.create(ctx, email, password, model.RoleRoot)
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("user_id", u.ID).Msg("root user created")
	return u, nil
}

func (uc *Users) create(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	if len(password) < minPasswordLen {
		return nil, apperr.BadRequest("password: must be at least 8 characters")
	}
	hash, err := uc.Hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}
	u, err := model.NewUser(uuid.NewString(), email, hash, role)
	if err != nil {
		return nil, inputErr(err)
	}
	if err := uc.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, storeErr("Failed to create user", err)
	}
	return u, nil
}

// List returns every account.
func (uc *Users) List(ctx context.Context) ([]*model.User, error) {
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, storeErr("Failed to list users", err)
	}
	return users, nil
}

// Update changes the caller's email and/or password.  A password change
// requires the current password and revokes the caller's session.
func (uc *Users) Update(ctx context.Context, in UpdateUserInput) (*model.User, error) {
	if in.Email == nil && in.Password == nil {
		return nil, apperr.BadRequest("Nothing to update")
	}
	u := *in.User

	if in.Email != nil {
		if err := u.SetEmail(*in.Email); err != nil {
			return nil, inputErr(err)
		}
	}
	if in.Password != nil {
		if !uc.Hasher.Compare(in.User.Password, in.CurrentPassword) {
			return nil, apperr.Forbidden("Current password is incorrect")
		}
		if len(*in.Password) < minPasswordLen {
			return nil, apperr.BadRequest("password: must be at least 8 characters")
		}
		hash, err := uc.Hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperr.Internal("Failed to hash password", err)
		}
		if err := u.SetPassword(hash); err != nil {
			return nil, apperr.Internal("", err)
		}
	}

	if err := uc.Users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, storeErr("Failed to update user", err)
	}
	if in.Password != nil {
		current, err := uc.currentSession(ctx, u.ID)
		if err != nil {
			return nil, storeErr("Failed to load session", err)
		}
		if err := uc.Sessions.DeleteAllByUser(ctx, u.ID); err != nil {
			return nil, storeErr("Failed to revoke sessions", err)
		}
		if err := uc.releaseDevice(ctx, current); err != nil {
			uc.Log.Warn().Err(err).Str("user_id", u.ID).Msg("device not marked logged out")
		}
		uc.publish(ctx, queue.EventSessionRevoked, u.ID, "")
	}
	return &u, nil
}

// Delete removes an account and everything it owns.  Admins delete
// customers, root also deletes admins, and root accounts and the caller
// itself cannot be deleted.
func (uc *Users) Delete(ctx context.Context, in DeleteUserInput) error {
	target, err := uc.Users.FindByID(ctx, in.UserID)
	if err != nil {
		if isNotFound(err) {
			return apperr.NotFound("User not found")
		}
		return storeErr("Failed to load user", err)
	}
	switch {
	case target.ID == in.Actor.ID:
		return apperr.Forbidden("Cannot delete yourself")
	case target.Role == model.RoleRoot:
		return apperr.Forbidden("Root users cannot be deleted")
	case target.Role == model.RoleAdmin && in.Actor.Role != model.RoleRoot:
		return apperr.Forbidden("Only root can delete admins")
	}

	// Sessions go first so the account is locked out before its data is removed.
	if err := uc.Sessions.DeleteAllByUser(ctx, target.ID); err != nil {
		return storeErr("Failed to revoke sessions", err)
	}
	if err := uc.Devices.DeleteByUser(ctx, target.ID); err != nil {
		return storeErr("Failed to delete devices", err)
	}
	if err := uc.Memos.DeleteByUser(ctx, target.ID); err != nil {
		return storeErr("Failed to delete memos", err)
	}
	if err := uc.Users.Delete(ctx, target.ID); err != nil && !isNotFound(err) {
		return storeErr("Failed to delete user", err)
	}

	uc.publish(ctx, queue.EventUserDeleted, target.ID, "")
	uc.Log.Info().Str("user_id", target.ID).Str("actor_id", in.Actor.ID).Msg("user deleted")
	return nil
}
