package usecase

import (
	"context"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
)

type AuthorizationInput struct {
	User *model.User
}

// ValidateAuthorization denies customers and lets admins and root
// through.  Ownership checks belong to the individual use cases.
type ValidateAuthorization struct{}

func NewValidateAuthorization() *ValidateAuthorization { return &ValidateAuthorization{} }

func (uc *ValidateAuthorization) Exec(_ context.Context, in AuthorizationInput) error {
	if in.User == nil {
		return apperr.Unauthorized("No token provided")
	}
	if !in.User.Role.Elevated() {
		return apperr.Forbidden("Insufficient permissions")
	}
	return nil
}
