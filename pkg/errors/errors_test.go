package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := fmt.Errorf("handler: %w", Clone(ErrNotFound, "estudiante no encontrado"))

	appErr := FromError(err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "estudiante no encontrado", appErr.Message)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrForbidden, "Solo puedes editar sesiones del día actual.")
	assert.Equal(t, "acceso denegado", ErrForbidden.Message)
	assert.Equal(t, http.StatusForbidden, clone.Status)
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(Internal(sql.ErrNoRows, "boom"), ErrInternal.Code))
	assert.False(t, HasCode(ErrMalformedInput, ErrNotFound.Code))
}
