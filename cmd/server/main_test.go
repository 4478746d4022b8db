package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartReturnsConfigurationErrors(t *testing.T) {
	t.Setenv("APP_STORE", "memory")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	err := start()
	assert.ErrorContains(t, err, "missing required env var: JWT_ACCESS_SECRET")
}
