package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NotFound("patient", nil), http.StatusNotFound},
		{InvalidInput("symptoms text is required"), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{InvalidImage(errors.New("unknown format")), http.StatusUnprocessableEntity},
		{Unavailable("consultation store", errors.New("down")), http.StatusServiceUnavailable},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("consultation store", cause)

	assert.Equal(t, "consultation store unavailable: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", InvalidInput("bad field"))

	assert.True(t, IsKind(err, ErrInvalidInput))
	assert.False(t, IsKind(err, ErrNotFound))
	assert.False(t, IsKind(errors.New("plain"), ErrInvalidInput))
	assert.False(t, IsKind(nil, ErrInvalidInput))
}
