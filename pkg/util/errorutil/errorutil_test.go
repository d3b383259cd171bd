package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrors(t *testing.T) {
	empty := FieldErrors{}
	assert.NoError(t, empty.Err())

	single := FieldErrors{}
	single.Add("description", "too short")
	single.Add("description", "ignored")
	err := single.Err()
	require.Error(t, err)
	assert.Equal(t, "too short", err.Error())

	multi := FieldErrors{}
	multi.Add("name", "required")
	multi.Add("description", "too short")
	domainErr := ToDomainError(multi.Err())
	assert.Equal(t, CodeValidation, domainErr.Code)
	assert.Equal(t, "invalid fields: description, name", domainErr.Message)
	assert.Equal(t, map[string]any{"name": "required", "description": "too short"}, domainErr.Details)
}

func TestIsCodeSeesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("edit: %w", NewForbidden("only the requester may edit"))
	assert.True(t, IsCode(err, CodeForbidden))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeForbidden))
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	cause := errors.New("connection refused")
	internal := ToDomainError(cause)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.ErrorIs(t, internal, cause)

	notFound := ToDomainError(NewNotFound("ticket", nil))
	assert.Equal(t, "ticket not found", notFound.Message)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)
	assert.NotNil(t, notFound.Details)
}
