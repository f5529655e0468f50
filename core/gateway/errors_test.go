package gateway_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restokit/core/gateway"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("validation error matches its kind only", func(t *testing.T) {
		t.Parallel()
		err := gateway.NewValidationError("name and address are required", "name", "address")
		assert.ErrorIs(t, err, gateway.ErrValidation)
		assert.NotErrorIs(t, err, gateway.ErrRequestFailed)
		assert.Equal(t, "name and address are required", err.Error())
		assert.Equal(t, []string{"name", "address"}, err.Details)
	})

	t.Run("with message keeps kind and status", func(t *testing.T) {
		t.Parallel()
		orig := &gateway.Error{Kind: gateway.ErrRequestFailed, Status: http.StatusNotFound, Message: "Error 404"}
		err := gateway.WithMessage(orig, "restaurant not found")

		require.ErrorIs(t, err, gateway.ErrRequestFailed)
		assert.Equal(t, "restaurant not found", err.Error())
		assert.True(t, gateway.IsNotFound(err))
		assert.Equal(t, "Error 404", orig.Message, "original is not modified")
	})

	t.Run("with message wraps foreign errors", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("decode failed")
		err := gateway.WithMessage(cause, "login failed")
		assert.ErrorIs(t, err, gateway.ErrRequestFailed)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "login failed", err.Error())
	})

	t.Run("message or fallback", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "fallback", gateway.MessageOr(errors.New("raw"), "fallback"))
		assert.Equal(t, "backend says no", gateway.MessageOr(&gateway.Error{Kind: gateway.ErrRequestFailed, Message: "backend says no"}, "fallback"))
	})

	t.Run("status of", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, gateway.StatusOf(errors.New("x")))
		assert.Equal(t, http.StatusTeapot, gateway.StatusOf(&gateway.Error{Kind: gateway.ErrRequestFailed, Status: http.StatusTeapot}))
	})
}
