package console_test

import (
	"errors"
	"testing"

	console "github.com/opspulse/console"
	"github.com/stretchr/testify/assert"
)

func TestNewConflictError(t *testing.T) {
	err := console.NewConflictError("username")

	assert.Equal(t, "username already exists. Please use another one.", err.Message)
	assert.Equal(t, "username", console.ConflictField(err))
}

func TestConflictField(t *testing.T) {
	t.Run("non conflict errors return empty", func(t *testing.T) {
		assert.Empty(t, console.ConflictField(errors.New("boom")))
		assert.Empty(t, console.ConflictField(console.ErrInvalidCredentials))
		assert.Empty(t, console.ConflictField(nil))
	})

	t.Run("conflict errors return the field", func(t *testing.T) {
		assert.Equal(t, "email", console.ConflictField(console.NewConflictError("email")))
	})
}

func TestTokenErrorsShareClientMessage(t *testing.T) {
	// expired and malformed tokens must be indistinguishable to clients
	assert.Equal(t, console.ErrTokenExpired.Message, console.ErrTokenMalformed.Message)
	assert.NotEqual(t, console.ErrTokenExpired.TextCode, console.ErrTokenMalformed.TextCode)
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, console.IsTokenExpiredError(console.ErrTokenExpired))
	assert.False(t, console.IsTokenExpiredError(console.ErrTokenMalformed))
	assert.False(t, console.IsTokenExpiredError(nil))
}
