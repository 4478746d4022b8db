// Package controller composes the authentication and authorization
// gates in front of protected actions.  A controller runs the gates in
// order and only invokes its action when both pass; a gate error is
// returned untouched.
package controller

import (
	"context"
	"errors"

	"github.com/iliyamo/memo-auth-api/internal/usecase"
)

var (
	ErrMissingAuthentication = errors.New("controller: authentication use case is required")
	ErrMissingAuthorization  = errors.New("controller: authorization use case is required")
	ErrMissingAction         = errors.New("controller: action is required")
)

// Authenticator is satisfied by *usecase.ValidateAuthentication.
type Authenticator interface {
	Exec(ctx context.Context, in usecase.AuthenticationInput) (*usecase.Principal, error)
}

// Authorizer is satisfied by *usecase.ValidateAuthorization.
type Authorizer interface {
	Exec(ctx context.Context, in usecase.AuthorizationInput) error
}

// Action is a protected use case.  It receives the principal resolved
// by the authentication gate alongside the request payload.
type Action[Req, Res any] func(ctx context.Context, p *usecase.Principal, req Req) (Res, error)

// AuthenticatedController runs the authentication gate before its action.
type AuthenticatedController[Req, Res any] struct {
	authn   Authenticator
	action  Action[Req, Res]
	metrics *GateMetrics
}

// NewAuthenticated fails immediately when a collaborator is missing so
// a miswired route is caught at startup instead of at request time.
func NewAuthenticated[Req, Res any](authn Authenticator, action Action[Req, Res]) (*AuthenticatedController[Req, Res], error) {
	if authn == nil {
		return nil, ErrMissingAuthentication
	}
	if action == nil {
		return nil, ErrMissingAction
	}
	return &AuthenticatedController[Req, Res]{authn: authn, action: action}, nil
}

// WithMetrics records gate decisions in m.
func (c *AuthenticatedController[Req, Res]) WithMetrics(m *GateMetrics) *AuthenticatedController[Req, Res] {
	c.metrics = m
	return c
}

// Exec authenticates authorization and runs the action.
func (c *AuthenticatedController[Req, Res]) Exec(ctx context.Context, authorization string, req Req) (Res, error) {
	p, err := c.authenticate(ctx, authorization)
	if err != nil {
		var zero Res
		return zero, err
	}
	return c.action(ctx, p, req)
}

func (c *AuthenticatedController[Req, Res]) authenticate(ctx context.Context, authorization string) (*usecase.Principal, error) {
	p, err := c.authn.Exec(ctx, usecase.AuthenticationInput{Authorization: authorization})
	c.metrics.observe(gateAuthentication, err)
	return p, err
}

// AuthorizedController additionally runs the authorization gate.
type AuthorizedController[Req, Res any] struct {
	AuthenticatedController[Req, Res]
	authz Authorizer
}

func NewAuthorized[Req, Res any](authn Authenticator, authz Authorizer, action Action[Req, Res]) (*AuthorizedController[Req, Res], error) {
	base, err := NewAuthenticated(authn, action)
	if err != nil {
		return nil, err
	}
	if authz == nil {
		return nil, ErrMissingAuthorization
	}
	return &AuthorizedController[Req, Res]{AuthenticatedController: *base, authz: authz}, nil
}

func (c *AuthorizedController[Req, Res]) WithMetrics(m *GateMetrics) *AuthorizedController[Req, Res] {
	c.metrics = m
	return c
}

func (c *AuthorizedController[Req, Res]) Exec(ctx context.Context, authorization string, req Req) (Res, error) {
	var zero Res
	p, err := c.authenticate(ctx, authorization)
	if err != nil {
		return zero, err
	}
	err = c.authz.Exec(ctx, usecase.AuthorizationInput{User: p.User})
	c.metrics.observe(gateAuthorization, err)
	if err != nil {
		return zero, err
	}
	return c.action(ctx, p, req)
}
