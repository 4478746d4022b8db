package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/usecase"
)

// MemoHandler serves memo CRUD.  Ownership is enforced by the use cases.
type MemoHandler struct {
	list, create, get, update, remove echo.HandlerFunc
}

func NewMemoHandler(g Gates, uc *usecase.Memos, log zerolog.Logger) (*MemoHandler, error) {
	list, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, _ input[empty]) ([]*model.Memo, error) {
		return uc.List(ctx, p.User)
	}))
	if err != nil {
		return nil, err
	}
	create, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, in input[usecase.MemoInput]) (*model.Memo, error) {
		return uc.Create(ctx, p.User, in.Body)
	}))
	if err != nil {
		return nil, err
	}
	get, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, in input[empty]) (*model.Memo, error) {
		return uc.Get(ctx, p.User, in.ID)
	}))
	if err != nil {
		return nil, err
	}
	update, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, in input[usecase.MemoInput]) (*model.Memo, error) {
		return uc.Update(ctx, p.User, in.ID, in.Body)
	}))
	if err != nil {
		return nil, err
	}
	remove, err := authenticated(g, action(func(ctx context.Context, p *usecase.Principal, in input[empty]) (empty, error) {
		return empty{}, uc.Delete(ctx, p.User, in.ID)
	}))
	if err != nil {
		return nil, err
	}
	return &MemoHandler{
		list:   serve[empty, []*model.Memo](list, http.StatusOK, log),
		create: serve[usecase.MemoInput, *model.Memo](create, http.StatusCreated, log),
		get:    serve[empty, *model.Memo](get, http.StatusOK, log),
		update: serve[usecase.MemoInput, *model.Memo](update, http.StatusOK, log),
		remove: serve[empty, empty](remove, http.StatusNoContent, log),
	}, nil
}

func (h *MemoHandler) List(c echo.Context) error   { return h.list(c) }
func (h *MemoHandler) Create(c echo.Context) error { return h.create(c) }
func (h *MemoHandler) Get(c echo.Context) error    { return h.get(c) }
func (h *MemoHandler) Update(c echo.Context) error { return h.update(c) }
func (h *MemoHandler) Delete(c echo.Context) error { return h.remove(c) }
