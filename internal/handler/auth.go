package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/usecase"
)

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type updateMeReq struct {
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	CurrentPassword string  `json:"current_password"`
}

// AuthHandler serves registration, login, token rotation, logout and
// the caller's own account.
type AuthHandler struct {
	login *usecase.Login
	users *usecase.Users
	log   zerolog.Logger

	refresh  echo.HandlerFunc
	logout   echo.HandlerFunc
	me       echo.HandlerFunc
	updateMe echo.HandlerFunc
}

// AuthUseCases are the use cases behind AuthHandler.
type AuthUseCases struct {
	Login   *usecase.Login
	Refresh *usecase.RefreshAccessToken
	Logout  *usecase.Logout
	Users   *usecase.Users
}

func NewAuthHandler(g Gates, uc AuthUseCases, log zerolog.Logger) (*AuthHandler, error) {
	if uc.Login == nil || uc.Refresh == nil || uc.Logout == nil || uc.Users == nil {
		return nil, errors.New("handler: auth use cases are required")
	}
	h := &AuthHandler{login: uc.Login, users: uc.Users, log: log}

	refresh, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, in input[refreshReq]) (usecase.TokenPair, error) {
		return uc.Refresh.Exec(ctx, usecase.RefreshInput{User: p.User, RefreshToken: in.Body.RefreshToken})
	}))
	if err != nil {
		return nil, err
	}
	logout, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, _ input[empty]) (empty, error) {
		return empty{}, uc.Logout.Exec(ctx, usecase.LogoutInput{RefreshToken: p.RefreshToken})
	}))
	if err != nil {
		return nil, err
	}
	me, err := authenticated(g, action(func(_ context.Context, p *usecase.Principal, _ input[empty]) (*model.User, error) {
		return p.User, nil
	}))
	if err != nil {
		return nil, err
	}
	updateMe, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, in input[updateMeReq]) (*model.User, error) {
		return uc.Users.Update(ctx, usecase.UpdateUserInput{
			User:            p.User,
			Email:           in.Body.Email,
			Password:        in.Body.Password,
			CurrentPassword: in.Body.CurrentPassword,
		})
	}))
	if err != nil {
		return nil, err
	}

	h.refresh = serve[refreshReq, usecase.TokenPair](refresh, http.StatusOK, log)
	h.logout = serve[empty, empty](logout, http.StatusNoContent, log)
	h.me = serve[empty, *model.User](me, http.StatusOK, log)
	h.updateMe = serve[updateMeReq, *model.User](updateMe, http.StatusOK, log)
	return h, nil
}

// Register creates a customer account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	u, err := h.users.Create(c.Request().Context(), usecase.CreateUserInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.LoginInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	pair, err := h.login.Exec(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c echo.Context) error  { return h.refresh(c) }
func (h *AuthHandler) Logout(c echo.Context) error   { return h.logout(c) }
func (h *AuthHandler) Me(c echo.Context) error       { return h.me(c) }
func (h *AuthHandler) UpdateMe(c echo.Context) error { return h.updateMe(c) }
