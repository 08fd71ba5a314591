package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError_KnownCode(t *testing.T) {
	err := NewError(ErrChatNotAccepted)

	assert.Equal(t, ErrChatNotAccepted, err.Code)
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.NotEmpty(t, err.Message)
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(99999)

	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewError_FormatsMessageDetails(t *testing.T) {
	err := NewError(ErrInvalidPassword, 6)

	assert.Contains(t, err.Message, "6")
}

func TestNewError_DoesNotMutateTemplate(t *testing.T) {
	NewError(ErrInvalidPassword, 6)
	second := NewError(ErrInvalidPassword, 8)

	assert.Contains(t, second.Message, "8")
}

func TestCustomError_ErrorString(t *testing.T) {
	err := NewError(ErrRequestNotFound)

	assert.Contains(t, err.Error(), "2102")
	assert.Contains(t, err.Error(), "404")
}
