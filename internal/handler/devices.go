package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/usecase"
)

type deviceReq struct {
	Name string `json:"name"`
}

// DeviceHandler serves the caller's devices.
type DeviceHandler struct {
	list, register, remove echo.HandlerFunc
}

func NewDeviceHandler(g Gates, uc *usecase.Devices, log zerolog.Logger) (*DeviceHandler, error) {
	list, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, _ input[empty]) ([]*model.Device, error) {
		return uc.List(ctx, p.User)
	}))
	if err != nil {
		return nil, err
	}
	register, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, in input[deviceReq]) (*model.Device, error) {
		return uc.Register(ctx, p.User, in.Body.Name)
	}))
	if err != nil {
		return nil, err
	}
	remove, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, in input[empty]) (empty, error) {
		return empty{}, uc.Delete(ctx, p, in.ID)
	}))
	if err != nil {
		return nil, err
	}
	return &DeviceHandler{
		list:     serve[empty, []*model.Device](list, http.StatusOK, log),
		register: serve[deviceReq, *model.Device](register, http.StatusCreated, log),
		remove:   serve[empty, empty](remove, http.StatusNoContent, log),
	}, nil
}

func (h *DeviceHandler) List(c echo.Context) error     { return h.list(c) }
func (h *DeviceHandler) Register(c echo.Context) error { return h.register(c) }
func (h *DeviceHandler) Delete(c echo.Context) error   { return h.remove(c) }
