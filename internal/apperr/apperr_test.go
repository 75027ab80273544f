package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("create review: %w", Conflict("already reviewed"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestErrorMessageIncludesField(t *testing.T) {
	err := Validation("rating", "must be between 1 and 5")
	assert.Equal(t, "rating: must be between 1 and 5", err.Error())
}

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("x", "bad"), http.StatusBadRequest},
		{LimitReached("cap"), http.StatusBadRequest},
		{Unauthorized("login"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("poll", "missing"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		{Internal("load", errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestInternalUnwraps(t *testing.T) {
	root := errors.New("connection reset")
	err := Internal("count likes", root)
	assert.ErrorIs(t, err, root)
}
