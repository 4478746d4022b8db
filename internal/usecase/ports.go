// Package usecase implements the authentication pipeline (login,
// refresh token rotation, logout and the two request gates) together
// with the user, device and memo use cases it protects.  Every use case
// returns *apperr.Error values so callers can branch on the error kind.
package usecase

import (
	"context"

	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
	"github.com/iliyamo/memo-auth-api/internal/utils"
)

// UserRepository persists users.  Lookups that match nothing return
// repository.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
}

// SessionStore persists refresh token sessions, at most one per user.
type SessionStore interface {
	Create(ctx context.Context, rt *model.RefreshToken) error
	FindOneByUserID(ctx context.Context, userID string) (*model.RefreshToken, error)
	DeleteOne(ctx context.Context, rt *model.RefreshToken) error
	DeleteAllByUser(ctx context.Context, userID string) error
}

type DeviceRepository interface {
	Create(ctx context.Context, d *model.Device) error
	FindByID(ctx context.Context, id string) (*model.Device, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Device, error)
	Update(ctx context.Context, d *model.Device) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type MemoRepository interface {
	Create(ctx context.Context, m *model.Memo) error
	FindByID(ctx context.Context, id string) (*model.Memo, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Memo, error)
	Update(ctx context.Context, m *model.Memo) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PasswordHasher hashes passwords and compares them in constant time.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenIssuer mints and verifies access and refresh tokens.  Verify
// failures wrap utils.ErrTokenExpired or utils.ErrTokenInvalid.
type TokenIssuer interface {
	IssueAccessToken(claims utils.Claims) (string, error)
	IssueRefreshToken(claims utils.Claims) (string, error)
	VerifyAccessToken(token string) (*utils.Claims, error)
	VerifyRefreshToken(token string) (*utils.Claims, error)
}

// EventPublisher delivers session events.  Delivery is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.SessionEvent) error
}
