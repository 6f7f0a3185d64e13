// internal/pkg/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{NotFound("missing"), http.StatusNotFound},
		{InvalidOperation("bad move"), http.StatusBadRequest},
		{Conflict("duplicate"), http.StatusBadRequest},
		{Internal(errors.New("boom"), "storage failed"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), tc.err.Message)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := NotFound("warehouse not found")
	wrapped := fmt.Errorf("loading relations: %w", base)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.Equal(t, "warehouse not found", appErr.Message)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "failed to load order %d", 7)

	assert.Equal(t, "failed to load order 7", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(fmt.Errorf("wrap: %w", Conflict("x"))))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))
}
