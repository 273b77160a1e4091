package errors

import (
	"database/sql"
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestCloneKeepsIdentityByCode(t *testing.T) {
	cloned := Clone(ErrNotFound, "student not found")
	assert.Equal(t, "student not found", cloned.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.True(t, stdErrors.Is(cloned, ErrNotFound))
	assert.False(t, stdErrors.Is(cloned, ErrConflict))
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrValidation, map[string]string{"email": "must be a valid email"})
	assert.Equal(t, "must be a valid email", err.Details["email"])
	assert.Nil(t, ErrValidation.Details)
}
