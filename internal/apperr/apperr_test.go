package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInternal:     http.StatusInternalServerError,
		KindBadRequest:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("gate: %w", Forbidden("User not found"))

	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.True(t, Is(err, KindForbidden))
	assert.False(t, Is(err, KindUnauthorized))
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestInternalSurfacesCauseMessage(t *testing.T) {
	cause := errors.New("user_id: must be a UUID")
	err := Internal("", cause)

	assert.Equal(t, "user_id: must be a UUID", err.Error())
	assert.ErrorIs(t, err, cause)
}
