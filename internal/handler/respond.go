package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/controller"
	"github.com/iliyamo/memo-auth-api/internal/usecase"
)

// Gates bundles the request gates shared by the protected handlers.
type Gates struct {
	Authn   controller.Authenticator
	Authz   controller.Authorizer
	Metrics *controller.GateMetrics
}

func authenticated[Req, Res any](g Gates, action controller.Action[Req, Res]) (*controller.AuthenticatedController[Req, Res], error) {
	c, err := controller.NewAuthenticated(g.Authn, action)
	if err != nil {
		return nil, err
	}
	return c.WithMetrics(g.Metrics), nil
}

func authorized[Req, Res any](g Gates, action controller.Action[Req, Res]) (*controller.AuthorizedController[Req, Res], error) {
	c, err := controller.NewAuthorized(g.Authn, g.Authz, action)
	if err != nil {
		return nil, err
	}
	return c.WithMetrics(g.Metrics), nil
}

// input is a decoded request: the JSON body and the :id path parameter.
// A decoding failure is kept and reported by the action, so a malformed
// body on a protected route still goes through the gates first.
type input[T any] struct {
	Body T
	ID   string
	err  error
}

func bind[T any](c echo.Context) input[T] {
	in := input[T]{ID: c.Param("id")}
	if err := (&echo.DefaultBinder{}).BindBody(c, &in.Body); err != nil {
		in.err = apperr.BadRequest("Invalid request body")
	}
	return in
}

// action adapts fn to a controller action that rejects undecodable input.
func action[T, Res any](fn func(ctx context.Context, p *usecase.Principal, in input[T]) (Res, error)) controller.Action[input[T], Res] {
	return func(ctx context.Context, p *usecase.Principal, in input[T]) (Res, error) {
		if in.err != nil {
			var zero Res
			return zero, in.err
		}
		return fn(ctx, p, in)
	}
}

type execer[Req, Res any] interface {
	Exec(ctx context.Context, authorization string, req Req) (Res, error)
}

// serve turns a controller into an echo handler that answers with
// status on success.  http.StatusNoContent writes no body.
func serve[T, Res any](ctrl execer[input[T], Res], status int, log zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		in := bind[T](c)
		res, err := ctrl.Exec(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization), in)
		if err != nil {
			return respondError(c, log, err)
		}
		if status == http.StatusNoContent {
			return c.NoContent(status)
		}
		return c.JSON(status, res)
	}
}

// respondError renders err as {"error": message} with the status of its
// kind.  Errors that are not *apperr.Error never leak their text.
func respondError(c echo.Context, log zerolog.Logger, err error) error {
	status := apperr.StatusOf(err)
	msg := http.StatusText(status)
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("route", c.Path()).Msg("request failed")
	}
	return c.JSON(status, echo.Map{"error": msg})
}

type empty struct{}
