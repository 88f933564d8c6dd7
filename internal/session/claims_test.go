package session_test

import (
	"testing"

	"github.com/counterdesk/counterdesk/internal/models"
	"github.com/counterdesk/counterdesk/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims *models.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)

	return token
}

func TestDisplayName(t *testing.T) {
	t.Run("Username Claim Preferred", func(t *testing.T) {
		token := signedToken(t, &models.Claims{
			Username:         "asha",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
		})

		assert.Equal(t, "asha", session.DisplayName(token))
	})

	t.Run("Falls Back To Subject", func(t *testing.T) {
		token := signedToken(t, &models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "asha@store"},
		})

		assert.Equal(t, "asha@store", session.DisplayName(token))
	})

	t.Run("Garbage Token Yields Empty Name", func(t *testing.T) {
		assert.Empty(t, session.DisplayName("not-a-jwt"))
	})
}
