package service

import (
	"testing"

	"github.com/beka-birhanu/vinom-mines/identity"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	users := newMemUserRepo()
	auth, err := NewAuthService(users, fakeTokenizer{})
	require.NoError(t, err)

	const password = "correct-horse-battery-staple"

	t.Run("Register", func(t *testing.T) {
		require.NoError(t, auth.Register("sweeper", password))
		assert.ErrorIs(t, auth.Register("sweeper", password), i.ErrUsernameConflict)
		assert.ErrorIs(t, auth.Register("x", password), identity.ErrUsernameTooShort)
	})

	t.Run("Sign in", func(t *testing.T) {
		user, token, err := auth.SignIn("sweeper", password)
		require.NoError(t, err)
		assert.Equal(t, "sweeper", user.Username)
		assert.Equal(t, "token-sweeper", token)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, _, err := auth.SignIn("sweeper", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, _, err := auth.SignIn("nobody", password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
