package controller

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/usecase"
)

type stubAuthn struct {
	principal *usecase.Principal
	err       error
	got       string
}

func (s *stubAuthn) Exec(_ context.Context, in usecase.AuthenticationInput) (*usecase.Principal, error) {
	s.got = in.Authorization
	return s.principal, s.err
}

type stubAuthz struct {
	err   error
	calls int
}

func (s *stubAuthz) Exec(context.Context, usecase.AuthorizationInput) error {
	s.calls++
	return s.err
}

type echoReq struct{ Text string }

func principal(role model.Role) *usecase.Principal {
	return &usecase.Principal{User: &model.User{ID: "user-1", Role: role}}
}

func recordingAction(calls *int) Action[echoReq, string] {
	return func(_ context.Context, p *usecase.Principal, req echoReq) (string, error) {
		*calls++
		return p.User.ID + ":" + req.Text, nil
	}
}

func TestConstructorsFailFast(t *testing.T) {
	calls := 0
	_, err := NewAuthenticated[echoReq, string](nil, recordingAction(&calls))
	assert.ErrorIs(t, err, ErrMissingAuthentication)

	_, err = NewAuthenticated[echoReq, string](&stubAuthn{}, nil)
	assert.ErrorIs(t, err, ErrMissingAction)

	_, err = NewAuthorized[echoReq, string](&stubAuthn{}, nil, recordingAction(&calls))
	assert.ErrorIs(t, err, ErrMissingAuthorization)

	_, err = NewAuthorized[echoReq, string](nil, &stubAuthz{}, recordingAction(&calls))
	assert.ErrorIs(t, err, ErrMissingAuthentication)
}

func TestAuthenticatedMergesPrincipal(t *testing.T) {
	calls := 0
	authn := &stubAuthn{principal: principal(model.RoleCustomer)}
	c, err := NewAuthenticated(authn, recordingAction(&calls))
	require.NoError(t, err)

	out, err := c.Exec(context.Background(), "Bearer abc", echoReq{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "user-1:hi", out)
	assert.Equal(t, "Bearer abc", authn.got)
	assert.Equal(t, 1, calls)
}

func TestAuthenticationFailureShortCircuits(t *testing.T) {
	calls := 0
	gateErr := apperr.Unauthorized("No token provided")
	authz := &stubAuthz{}
	c, err := NewAuthorized(&stubAuthn{err: gateErr}, authz, recordingAction(&calls))
	require.NoError(t, err)

	_, err = c.Exec(context.Background(), "", echoReq{})
	assert.Same(t, gateErr, err)
	assert.Zero(t, authz.calls)
	assert.Zero(t, calls)
}

func TestAuthorizationFailureShortCircuits(t *testing.T) {
	calls := 0
	gateErr := apperr.Forbidden("Insufficient permissions")
	c, err := NewAuthorized(&stubAuthn{principal: principal(model.RoleCustomer)}, &stubAuthz{err: gateErr}, recordingAction(&calls))
	require.NoError(t, err)

	_, err = c.Exec(context.Background(), "Bearer abc", echoReq{})
	assert.Same(t, gateErr, err)
	assert.Zero(t, calls)
}

func TestAuthorizedRunsWithRealGate(t *testing.T) {
	calls := 0
	c, err := NewAuthorized(&stubAuthn{principal: principal(model.RoleAdmin)}, usecase.NewValidateAuthorization(), recordingAction(&calls))
	require.NoError(t, err)

	out, err := c.Exec(context.Background(), "Bearer abc", echoReq{Text: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "user-1:ok", out)
}

func TestGateMetricsCountDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewGateMetrics(reg)
	require.NoError(t, err)
	again, err := NewGateMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, m.Decisions, again.Decisions)

	calls := 0
	ok, err := NewAuthorized(&stubAuthn{principal: principal(model.RoleAdmin)}, &stubAuthz{}, recordingAction(&calls))
	require.NoError(t, err)
	denied, err := NewAuthorized(&stubAuthn{principal: principal(model.RoleCustomer)}, &stubAuthz{err: apperr.Forbidden("no")}, recordingAction(&calls))
	require.NoError(t, err)
	ok.WithMetrics(m)
	denied.WithMetrics(m)

	_, _ = ok.Exec(context.Background(), "Bearer a", echoReq{})
	_, _ = denied.Exec(context.Background(), "Bearer b", echoReq{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions.WithLabelValues(gateAuthentication, "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues(gateAuthorization, "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues(gateAuthorization, "forbidden")))
}
