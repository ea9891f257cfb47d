package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ValidationError("bad").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFoundError("gone").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, InternalError("boom", nil).HTTPStatus())
}

func TestError_MessageFormatting(t *testing.T) {
	cause := errors.New("disk full")
	err := InternalError("saving config", cause)

	assert.Equal(t, "internal: saving config: disk full", err.Error())
	assert.Equal(t, "validation: subscriber id must be a UUID",
		ValidationError("subscriber id must be a UUID").Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := InternalError("saving config", cause)
	assert.ErrorIs(t, err, cause)
}

func TestError_ToResponseHidesCause(t *testing.T) {
	err := InternalError("saving config", errors.New("disk full at /var/lib"))
	resp := err.ToResponse()

	assert.Equal(t, "internal", resp["error"])
	assert.Equal(t, "saving config", resp["message"])
	assert.NotContains(t, resp["message"], "/var/lib")
}

func TestAsStructuredError(t *testing.T) {
	structured := NotFoundError("no such subscriber")
	assert.Same(t, structured, AsStructuredError(structured))

	plain := errors.New("plain")
	converted := AsStructuredError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.ErrorIs(t, converted, plain)
}
