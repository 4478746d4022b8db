package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/usecase"
)

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AdminHandler serves user management.  Every route passes both gates.
type AdminHandler struct {
	list, create, remove echo.HandlerFunc
}

func NewAdminHandler(g Gates, uc *usecase.Users, log zerolog.Logger) (*AdminHandler, error) {
	list, err := authorized(g, action(func(ctx context.Context, _ *usecase.Principal, _ input[empty]) ([]*model.User, error) {
		return uc.List(ctx)
	}))
	if err != nil {
		return nil, err
	}
	create, err := authorized(g, action(func(ctx context.Context, p *usecase.Principal, in input[createUserReq]) (*model.User, error) {
		role := model.RoleCustomer
		if in.Body.Role != "" {
			r, ok := model.ParseRole(in.Body.Role)
			if !ok {
				return nil, apperr.BadRequest("role: must be one of ADMIN, CUSTOMER")
			}
			role = r
		}
		return uc.Create(ctx, usecase.CreateUserInput{Actor: p.User, Email: in.Body.Email, Password: in.Body.Password, Role: role})
	}))
	if err != nil {
		return nil, err
	}
	remove, err := authorized(g, action(func(ctx context.Context, p *usecase.Principal, in input[empty]) (empty, error) {
		return empty{}, uc.Delete(ctx, usecase.DeleteUserInput{Actor: p.User, UserID: in.ID})
	}))
	if err != nil {
		return nil, err
	}
	return &AdminHandler{
		list:   serve[empty, []*model.User](list, http.StatusOK, log),
		create: serve[createUserReq, *model.User](create, http.StatusCreated, log),
		remove: serve[empty, empty](remove, http.StatusNoContent, log),
	}, nil
}

func (h *AdminHandler) ListUsers(c echo.Context) error  { return h.list(c) }
func (h *AdminHandler) CreateUser(c echo.Context) error { return h.create(c) }
func (h *AdminHandler) DeleteUser(c echo.Context) error { return h.remove(c) }
