package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsChain(t *testing.T) {
	base := Conflict("a pending request already exists")
	wrapped := fmt.Errorf("create approval request: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad input")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("duplicate")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(InvalidState("wrong status")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("missing")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindUnknown, cause, "failed to load project")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load project: connection reset", err.Error())
}
