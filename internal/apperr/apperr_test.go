package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ValidationError.Status())
	assert.Equal(t, http.StatusNotFound, NotFound.Status())
	assert.Equal(t, http.StatusInternalServerError, Internal.Status())
	assert.Equal(t, http.StatusOK, DeviceUnavailable.Status())
	assert.Equal(t, http.StatusOK, NetworkError.Status())
	assert.Equal(t, http.StatusOK, PersistenceError.Status())
}

func TestAsExtractsTypedError(t *testing.T) {
	err := Validation("bad value: %d", 7)
	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, ValidationError, e.Kind)
	assert.Contains(t, e.Error(), "bad value: 7")
}

func TestAsRejectsPlainError(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("dial failed")
	err := Network("sacn send", cause)
	assert.ErrorIs(t, err, cause)
}
